package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bissquit/incident-tracker/internal/config"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	cfg.Storage.Driver = config.DriverMemory
	cfg.Log.Level = "error"
	if mutate != nil {
		mutate(cfg)
	}

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func serve(a *App, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func TestApp_SystemEndpoints(t *testing.T) {
	a := newMemoryApp(t, nil)

	rec := serve(a, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = serve(a, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var ver map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ver))
	assert.Contains(t, ver, "version")
	assert.Contains(t, ver, "commit")

	rec = serve(a, http.MethodGet, "/api/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/incidents/{id}:")

	rec = serve(a, http.MethodGet, "/docs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SwaggerUIBundle")
}

func TestApp_IncidentLifecycle(t *testing.T) {
	a := newMemoryApp(t, nil)

	rec := serve(a, http.MethodPost, "/incidents",
		`{"title":"DB down","service":"DB","severity":"SEV1","status":"OPEN","owner":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created incidents.IncidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "/incidents/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	rec = serve(a, http.MethodPatch, "/incidents/"+created.ID, `{"status":"RESOLVED","owner":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated incidents.IncidentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "RESOLVED", updated.Status)
	require.NotNil(t, updated.Owner)
	assert.Equal(t, "", *updated.Owner)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	rec = serve(a, http.MethodGet, "/incidents?status=resolved", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page incidents.PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)

	rec = serve(a, http.MethodGet, "/incidents/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_CORSPreflight(t *testing.T) {
	a := newMemoryApp(t, func(c *config.Config) {
		c.CORS.AllowedOrigins = []string{"https://ui.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/incidents", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ui.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestApp_CORSDefaultOrigins(t *testing.T) {
	a := newMemoryApp(t, nil)

	for _, origin := range []string{"http://localhost:3000", "http://frontend"} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		a.Router().ServeHTTP(rec, req)

		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestApp_RateLimit(t *testing.T) {
	a := newMemoryApp(t, func(c *config.Config) {
		c.Server.RateLimit.Enabled = true
		c.Server.RateLimit.RequestsPerSecond = 0.01
		c.Server.RateLimit.Burst = 2
	})

	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, serve(a, http.MethodGet, "/healthz", "").Code)

	rec := serve(a, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestApp_SeedOnStart(t *testing.T) {
	a := newMemoryApp(t, func(c *config.Config) {
		c.Storage.Seed = true
	})

	count, err := a.Store().Repository.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, count)
}

func TestApp_NotificationsEnabled(t *testing.T) {
	received := make(chan map[string]any, 1)
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	a := newMemoryApp(t, func(c *config.Config) {
		c.Notifications.Enabled = true
		c.Notifications.WebhookURL = webhook.URL
		c.Notifications.BaseURL = "https://tracker.example.com"
		c.Notifications.Worker.RatePerSecond = 0
	})

	rec := serve(a, http.MethodPost, "/incidents",
		`{"title":"Checkout errors","service":"Payments","severity":"SEV2","status":"OPEN"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, a.Shutdown(context.Background()))

	select {
	case payload := <-received:
		assert.Contains(t, payload["text"], "[SEV2] New incident: Checkout errors")
		assert.Contains(t, payload["text"], "https://tracker.example.com/incidents/")
	default:
		t.Fatal("webhook was not called")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)

	buf.Reset()
	logger = NewLogger(config.LogConfig{Level: "bogus", Format: "text"}, &buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.NotContains(t, buf.String(), "hidden")
}
