//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/bissquit/incident-tracker/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// uniqueService returns a service name no other test uses, so list
// assertions can filter down to the incidents a test created.
func uniqueService(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// createIncident creates an incident and returns it. fields override the
// defaults.
func createIncident(t *testing.T, client *testutil.Client, fields map[string]interface{}) incidents.IncidentResponse {
	t.Helper()

	payload := map[string]interface{}{
		"title":    "Test incident",
		"service":  "test-service",
		"severity": "SEV3",
		"status":   "OPEN",
	}
	for k, v := range fields {
		payload[k] = v
	}

	resp, err := client.POST("/incidents", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create incident")

	var inc incidents.IncidentResponse
	testutil.DecodeJSON(t, resp, &inc)
	return inc
}

// listIncidents fetches one page with the given raw query.
func listIncidents(t *testing.T, client *testutil.Client, query string) incidents.PageResponse {
	t.Helper()

	resp, err := client.GET("/incidents?" + query)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "list incidents")

	var page incidents.PageResponse
	testutil.DecodeJSON(t, resp, &page)
	return page
}

func ids(page incidents.PageResponse) []string {
	out := make([]string, 0, len(page.Data))
	for _, inc := range page.Data {
		out = append(out, inc.ID)
	}
	return out
}
