package domain

import "time"

// Severity is the criticality tier of an incident. SEV1 is the most critical.
type Severity string

// Severities.
const (
	SeveritySEV1 Severity = "SEV1"
	SeveritySEV2 Severity = "SEV2"
	SeveritySEV3 Severity = "SEV3"
	SeveritySEV4 Severity = "SEV4"
)

// Severities lists all severities from most to least critical.
var Severities = []Severity{SeveritySEV1, SeveritySEV2, SeveritySEV3, SeveritySEV4}

// IsValid checks if the severity is one of the known values.
func (s Severity) IsValid() bool {
	switch s {
	case SeveritySEV1, SeveritySEV2, SeveritySEV3, SeveritySEV4:
		return true
	}
	return false
}

// ParseSeverity maps a canonical name to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(s)
	return sev, sev.IsValid()
}

// IncidentStatus is the lifecycle value of an incident.
// Any status may follow any other.
type IncidentStatus string

// Incident statuses.
const (
	IncidentStatusOpen      IncidentStatus = "OPEN"
	IncidentStatusMitigated IncidentStatus = "MITIGATED"
	IncidentStatusResolved  IncidentStatus = "RESOLVED"
)

// IncidentStatuses lists all incident statuses.
var IncidentStatuses = []IncidentStatus{IncidentStatusOpen, IncidentStatusMitigated, IncidentStatusResolved}

// IsValid checks if the status is one of the known values.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusMitigated, IncidentStatusResolved:
		return true
	}
	return false
}

// ParseIncidentStatus maps a canonical name to an IncidentStatus.
func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	st := IncidentStatus(s)
	return st, st.IsValid()
}

// Field limits.
const (
	MaxTitleLength   = 200
	MaxServiceLength = 100
	MaxOwnerLength   = 100
	MaxSummaryLength = 2000
)

// Incident is a tracked operational issue.
// Owner and Summary are nil when never set; an empty string is a distinct, set value.
type Incident struct {
	ID        string
	Title     string
	Service   string
	Severity  Severity
	Status    IncidentStatus
	Owner     *string
	Summary   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the incident.
func (i *Incident) Clone() *Incident {
	c := *i
	if i.Owner != nil {
		owner := *i.Owner
		c.Owner = &owner
	}
	if i.Summary != nil {
		summary := *i.Summary
		c.Summary = &summary
	}
	return &c
}
