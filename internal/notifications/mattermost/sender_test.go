package mattermost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bissquit/incident-tracker/internal/notifications"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_Defaults(t *testing.T) {
	sender := NewSender(Config{})

	assert.Equal(t, defaultUsername, sender.config.Username)
	assert.Equal(t, defaultTimeout, sender.config.Timeout)
	assert.NotNil(t, sender.httpClient)
}

func TestSender_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "#### [SEV1] New incident: DB down\n\nbody", payload.Text)
		assert.Equal(t, "oncall-bot", payload.Username)
		assert.Equal(t, "incidents", payload.Channel)
		assert.Empty(t, payload.IconURL)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSender(Config{Username: "oncall-bot", Channel: "incidents"})
	err := sender.Send(context.Background(), notifications.Notification{
		To:      server.URL,
		Subject: "[SEV1] New incident: DB down",
		Body:    "body",
	})

	assert.NoError(t, err)
}

func TestSender_Send_WithoutSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "just text", payload.Text)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewSender(Config{}).Send(context.Background(), notifications.Notification{To: server.URL, Body: "just text"})
	assert.NoError(t, err)
}

func TestSender_Send_EmptyWebhook(t *testing.T) {
	err := NewSender(Config{}).Send(context.Background(), notifications.Notification{Body: "x"})

	var permErr *PermanentError
	require.ErrorAs(t, err, &permErr)
	assert.Contains(t, permErr.Message, "webhook URL is empty")
	assert.False(t, permErr.IsRetryable())
}

func TestSender_Send_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		contains  string
	}{
		{"bad request", http.StatusBadRequest, "invalid payload", false, "invalid payload"},
		{"unauthorized", http.StatusUnauthorized, "", false, "invalid or expired webhook"},
		{"forbidden", http.StatusForbidden, "", false, "invalid or expired webhook"},
		{"not found", http.StatusNotFound, "", false, "webhook not found"},
		{"rate limited", http.StatusTooManyRequests, "", true, "rate limited"},
		{"server error", http.StatusBadGateway, "upstream down", true, "upstream down"},
		{"unexpected", http.StatusConflict, "conflict", false, "unexpected status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewSender(Config{}).Send(context.Background(), notifications.Notification{To: server.URL, Body: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			var r interface{ IsRetryable() bool }
			require.ErrorAs(t, err, &r)
			assert.Equal(t, tt.retryable, r.IsRetryable())
		})
	}
}

func TestSender_Send_NetworkErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewSender(Config{Timeout: time.Second}).Send(context.Background(), notifications.Notification{To: url, Body: "x"})

	var retryErr *RetryableError
	require.ErrorAs(t, err, &retryErr)
	assert.True(t, retryErr.IsRetryable())
}

func TestMaskWebhookURL(t *testing.T) {
	assert.Equal(t, "http://short", maskWebhookURL("http://short"))
	masked := maskWebhookURL("https://chat.example.com/hooks/abcdefghijklmnopqrstuvwxyz")
	assert.Equal(t, "https://chat.example...uvwxyz", masked)
	assert.NotContains(t, masked, "abcdefghijklmnop")
}
