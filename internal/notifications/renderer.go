package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer renders notifications from templates.
type Renderer struct {
	templates map[MessageType]*template.Template
}

// NewRenderer creates a new renderer and loads all templates.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"title":         titleCase,
		"formatTime":    formatTime,
		"statusEmoji":   statusEmoji,
		"severityEmoji": severityEmoji,
	}

	r := &Renderer{templates: make(map[MessageType]*template.Template)}

	for _, msg := range []MessageType{MessageTypeCreated, MessageTypeUpdated} {
		filename := fmt.Sprintf("templates/%s.tmpl", msg)

		content, err := templatesFS.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", filename, err)
		}

		tmpl, err := template.New(string(msg)).Funcs(funcMap).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", msg, err)
		}
		r.templates[msg] = tmpl
	}

	return r, nil
}

// Render returns the subject and markdown body for a payload.
func (r *Renderer) Render(payload Payload) (subject, body string, err error) {
	tmpl, ok := r.templates[payload.MessageType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateNotFound, payload.MessageType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", "", fmt.Errorf("execute template %s: %w", payload.MessageType, err)
	}

	return renderSubject(payload), strings.TrimSpace(buf.String()), nil
}

func renderSubject(payload Payload) string {
	var prefix string
	switch payload.MessageType {
	case MessageTypeCreated:
		prefix = "New incident"
	case MessageTypeUpdated:
		if payload.Changes != nil && payload.Changes.StatusTo == "RESOLVED" {
			prefix = "Resolved"
		} else {
			prefix = "Incident updated"
		}
	default:
		prefix = "Notification"
	}

	return fmt.Sprintf("[%s] %s: %s", payload.Incident.Severity, prefix, payload.Incident.Title)
}

// Template functions

var titleCaser = cases.Title(language.English)

// titleCase turns canonical enum names like "MITIGATED" into "Mitigated".
func titleCase(s string) string {
	return titleCaser.String(strings.ToLower(s))
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}

func statusEmoji(status string) string {
	switch status {
	case "OPEN":
		return "🚨"
	case "MITIGATED":
		return "🛠️"
	case "RESOLVED":
		return "✅"
	default:
		return "📋"
	}
}

func severityEmoji(severity string) string {
	switch severity {
	case "SEV1":
		return "🔴"
	case "SEV2":
		return "🟠"
	case "SEV3":
		return "🟡"
	case "SEV4":
		return "🔵"
	default:
		return "⚪"
	}
}
