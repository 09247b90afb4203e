package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// WebhookMessage is a message received by a WebhookRecorder.
type WebhookMessage struct {
	Text     string `json:"text"`
	Username string `json:"username"`
	Channel  string `json:"channel"`
}

// WebhookRecorder is a fake Mattermost-compatible incoming webhook.
type WebhookRecorder struct {
	*httptest.Server

	mu       sync.Mutex
	messages []WebhookMessage
	status   int
}

// NewWebhookRecorder starts a recorder that is closed when the test ends.
func NewWebhookRecorder(t *testing.T) *WebhookRecorder {
	t.Helper()

	rec := StartWebhookRecorder()
	t.Cleanup(rec.Close)
	return rec
}

// StartWebhookRecorder starts a recorder that answers 200 until told
// otherwise. The caller closes it.
func StartWebhookRecorder() *WebhookRecorder {
	rec := &WebhookRecorder{status: http.StatusOK}
	rec.Server = httptest.NewServer(http.HandlerFunc(rec.handle))
	return rec
}

func (r *WebhookRecorder) handle(w http.ResponseWriter, req *http.Request) {
	var msg WebhookMessage
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	status := r.status
	if status < 300 {
		r.messages = append(r.messages, msg)
	}
	r.mu.Unlock()

	w.WriteHeader(status)
}

// SetStatus changes the status code returned for subsequent calls.
func (r *WebhookRecorder) SetStatus(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
}

// Messages returns the messages accepted so far.
func (r *WebhookRecorder) Messages() []WebhookMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]WebhookMessage(nil), r.messages...)
}

// WaitForMessages polls until at least n messages arrived or timeout passes.
func (r *WebhookRecorder) WaitForMessages(n int, timeout time.Duration) []WebhookMessage {
	deadline := time.Now().Add(timeout)
	for {
		msgs := r.Messages()
		if len(msgs) >= n || time.Now().After(deadline) {
			return msgs
		}
		time.Sleep(20 * time.Millisecond)
	}
}
