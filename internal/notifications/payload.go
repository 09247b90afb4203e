package notifications

import (
	"strings"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// MessageType defines the type of notification.
type MessageType string

// Message types.
const (
	MessageTypeCreated MessageType = "created" // incident opened
	MessageTypeUpdated MessageType = "updated" // severity or status changed
)

// Payload contains data for rendering a notification.
type Payload struct {
	MessageType MessageType
	Incident    IncidentData
	Changes     *Changes
	IncidentURL string
	GeneratedAt time.Time
}

// IncidentData is the incident snapshot a message is rendered from.
type IncidentData struct {
	ID        string
	Title     string
	Service   string
	Severity  string
	Status    string
	Owner     string
	Summary   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Changes describes what changed in an update.
type Changes struct {
	SeverityFrom string
	SeverityTo   string
	StatusFrom   string
	StatusTo     string
}

// SeverityChanged reports whether the severity differs.
func (c *Changes) SeverityChanged() bool { return c.SeverityFrom != c.SeverityTo }

// StatusChanged reports whether the status differs.
func (c *Changes) StatusChanged() bool { return c.StatusFrom != c.StatusTo }

func newIncidentData(inc *domain.Incident) IncidentData {
	data := IncidentData{
		ID:        inc.ID,
		Title:     inc.Title,
		Service:   inc.Service,
		Severity:  string(inc.Severity),
		Status:    string(inc.Status),
		CreatedAt: inc.CreatedAt,
		UpdatedAt: inc.UpdatedAt,
	}
	if inc.Owner != nil {
		data.Owner = *inc.Owner
	}
	if inc.Summary != nil {
		data.Summary = *inc.Summary
	}
	return data
}

func incidentURL(baseURL, id string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/incidents/" + id
}

// NewCreatedPayload builds the announcement for a new incident.
func NewCreatedPayload(inc *domain.Incident, baseURL string, now time.Time) Payload {
	return Payload{
		MessageType: MessageTypeCreated,
		Incident:    newIncidentData(inc),
		IncidentURL: incidentURL(baseURL, inc.ID),
		GeneratedAt: now,
	}
}

// NewUpdatedPayload builds the announcement for an update. It returns false
// when neither severity nor status changed; such updates are not announced.
func NewUpdatedPayload(before, after *domain.Incident, baseURL string, now time.Time) (Payload, bool) {
	changes := &Changes{
		SeverityFrom: string(before.Severity),
		SeverityTo:   string(after.Severity),
		StatusFrom:   string(before.Status),
		StatusTo:     string(after.Status),
	}
	if !changes.SeverityChanged() && !changes.StatusChanged() {
		return Payload{}, false
	}

	return Payload{
		MessageType: MessageTypeUpdated,
		Incident:    newIncidentData(after),
		Changes:     changes,
		IncidentURL: incidentURL(baseURL, after.ID),
		GeneratedAt: now,
	}, true
}
