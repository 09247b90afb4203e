package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_IsValid(t *testing.T) {
	for _, s := range Severities {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Severity("SEV5").IsValid())
	assert.False(t, Severity("sev1").IsValid())
	assert.False(t, Severity("").IsValid())
}

func TestParseIncidentStatus(t *testing.T) {
	st, ok := ParseIncidentStatus("MITIGATED")
	assert.True(t, ok)
	assert.Equal(t, IncidentStatusMitigated, st)

	_, ok = ParseIncidentStatus("CLOSED")
	assert.False(t, ok)
}

func TestIncident_Clone(t *testing.T) {
	owner := "alice"
	orig := &Incident{ID: "1", Title: "DB down", Owner: &owner}

	c := orig.Clone()
	*c.Owner = "bob"
	c.Title = "changed"

	assert.Equal(t, "alice", *orig.Owner)
	assert.Equal(t, "DB down", orig.Title)
	assert.Nil(t, c.Summary)
}
