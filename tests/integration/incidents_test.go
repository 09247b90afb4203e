//go:build integration

package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/bissquit/incident-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncidents_CreateAndGet(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/incidents", map[string]interface{}{
		"title":    "Database unreachable",
		"service":  "Payments DB",
		"severity": "SEV1",
		"status":   "OPEN",
		"owner":    "alice",
		"summary":  "Primary does not answer",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created incidents.IncidentResponse
	testutil.DecodeJSON(t, resp, &created)
	assert.Equal(t, "/incidents/"+created.ID, resp.Header.Get("Location"))
	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	resp, err = client.GET("/incidents/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched incidents.IncidentResponse
	testutil.DecodeJSON(t, resp, &fetched)
	assert.Equal(t, created, fetched)
	require.NotNil(t, fetched.Owner)
	assert.Equal(t, "alice", *fetched.Owner)

	// Upper-case ids resolve to the same incident.
	resp, err = client.GET("/incidents/" + strings.ToUpper(created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestIncidents_CreatePersistsRow(t *testing.T) {
	client := newTestClient(t)
	inc := createIncident(t, client, map[string]interface{}{"title": "Row check", "owner": nil})

	var (
		title     string
		owner     *string
		createdAt time.Time
	)
	err := testDB.QueryRow(context.Background(),
		"SELECT title, owner, created_at FROM incidents WHERE id = $1", inc.ID,
	).Scan(&title, &owner, &createdAt)
	require.NoError(t, err)

	assert.Equal(t, "Row check", title)
	assert.Nil(t, owner)
	assert.True(t, createdAt.Equal(inc.CreatedAt))
}

func TestIncidents_CreateValidation(t *testing.T) {
	client := newTestClient(t)

	tests := []struct {
		name     string
		payload  map[string]interface{}
		expected []string
	}{
		{
			name:     "empty body",
			payload:  map[string]interface{}{},
			expected: []string{incidents.MsgTitleRequired, incidents.MsgServiceRequired, incidents.MsgInvalidSeverity, incidents.MsgInvalidStatus},
		},
		{
			name: "blank title and long service",
			payload: map[string]interface{}{
				"title": "   ", "service": strings.Repeat("s", 101), "severity": "SEV2", "status": "OPEN",
			},
			expected: []string{incidents.MsgTitleRequired, incidents.MsgServiceTooLong},
		},
		{
			name: "lower-case enums are rejected",
			payload: map[string]interface{}{
				"title": "t", "service": "s", "severity": "sev1", "status": "open",
			},
			expected: []string{incidents.MsgInvalidSeverity, incidents.MsgInvalidStatus},
		},
		{
			name: "long owner and summary",
			payload: map[string]interface{}{
				"title": "t", "service": "s", "severity": "SEV4", "status": "RESOLVED",
				"owner": strings.Repeat("o", 101), "summary": strings.Repeat("x", 2001),
			},
			expected: []string{incidents.MsgOwnerTooLong, incidents.MsgSummaryTooLong},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client.SetT(t)
			resp, err := client.POST("/incidents", tt.payload)
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.expected, testutil.ErrorMessages(t, resp))
		})
	}
}

func TestIncidents_MalformedJSON(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.Raw(http.MethodPost, "/incidents", `{"title":`)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{incidents.MsgInvalidJSONBody}, testutil.ErrorMessages(t, resp))

	inc := createIncident(t, newTestClient(t), nil)
	resp, err = client.Raw(http.MethodPatch, "/incidents/"+inc.ID, `not json`)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{incidents.MsgInvalidJSONBody}, testutil.ErrorMessages(t, resp))
}

func TestIncidents_NotFound(t *testing.T) {
	client := newTestClient(t)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		resp, err := client.GET("/incidents/" + id)
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body struct {
			Message string `json:"message"`
		}
		testutil.DecodeJSON(t, resp, &body)
		assert.Equal(t, incidents.MsgIncidentNotFound, body.Message)

		resp, err = client.PATCH("/incidents/"+id, map[string]interface{}{"title": "x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestIncidents_PartialUpdate(t *testing.T) {
	client := newTestClient(t)
	inc := createIncident(t, client, map[string]interface{}{
		"title":   "Checkout errors",
		"service": "Checkout",
		"owner":   "bob",
		"summary": "5xx spike",
	})

	t.Run("empty and null title and service are ignored", func(t *testing.T) {
		client.SetT(t)
		resp, err := client.PATCH("/incidents/"+inc.ID, map[string]interface{}{
			"title":   "",
			"service": nil,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got incidents.IncidentResponse
		testutil.DecodeJSON(t, resp, &got)
		assert.Equal(t, "Checkout errors", got.Title)
		assert.Equal(t, "Checkout", got.Service)
		assert.True(t, got.UpdatedAt.After(inc.UpdatedAt))
		assert.Equal(t, inc.CreatedAt, got.CreatedAt)
	})

	t.Run("empty owner clears, null summary keeps", func(t *testing.T) {
		client.SetT(t)
		resp, err := client.PATCH("/incidents/"+inc.ID, map[string]interface{}{
			"owner":   "",
			"summary": nil,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got incidents.IncidentResponse
		testutil.DecodeJSON(t, resp, &got)
		require.NotNil(t, got.Owner)
		assert.Equal(t, "", *got.Owner)
		require.NotNil(t, got.Summary)
		assert.Equal(t, "5xx spike", *got.Summary)

		var stored *string
		require.NoError(t, testDB.QueryRow(context.Background(),
			"SELECT owner FROM incidents WHERE id = $1", inc.ID,
		).Scan(&stored))
		require.NotNil(t, stored)
		assert.Equal(t, "", *stored)
	})

	t.Run("enum changes", func(t *testing.T) {
		client.SetT(t)
		resp, err := client.PATCH("/incidents/"+inc.ID, map[string]interface{}{
			"severity": "SEV2",
			"status":   "MITIGATED",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got incidents.IncidentResponse
		testutil.DecodeJSON(t, resp, &got)
		assert.Equal(t, "SEV2", got.Severity)
		assert.Equal(t, "MITIGATED", got.Status)
	})

	t.Run("invalid values are rejected and nothing changes", func(t *testing.T) {
		client.SetT(t)
		resp, err := client.PATCH("/incidents/"+inc.ID, map[string]interface{}{
			"title":  strings.Repeat("t", 201),
			"status": "CLOSED",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{incidents.MsgTitleTooLong, incidents.MsgInvalidStatus}, testutil.ErrorMessages(t, resp))

		resp, err = client.GET("/incidents/" + inc.ID)
		require.NoError(t, err)
		var got incidents.IncidentResponse
		testutil.DecodeJSON(t, resp, &got)
		assert.Equal(t, "Checkout errors", got.Title)
		assert.Equal(t, "MITIGATED", got.Status)
	})

	t.Run("empty patch still bumps updatedAt", func(t *testing.T) {
		client.SetT(t)
		resp, err := client.GET("/incidents/" + inc.ID)
		require.NoError(t, err)
		var before incidents.IncidentResponse
		testutil.DecodeJSON(t, resp, &before)

		resp, err = client.PATCH("/incidents/"+inc.ID, map[string]interface{}{})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var after incidents.IncidentResponse
		testutil.DecodeJSON(t, resp, &after)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})
}
