package incidents

import (
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/oapi-codegen/nullable"
)

// UpdateInput holds a partial update. Each field is applied independently.
type UpdateInput struct {
	Title    nullable.Nullable[string]
	Service  nullable.Nullable[string]
	Severity nullable.Nullable[domain.Severity]
	Status   nullable.Nullable[domain.IncidentStatus]
	Owner    nullable.Nullable[string]
	Summary  nullable.Nullable[string]
}

// ApplyUpdate merges in into a copy of current and stamps UpdatedAt with now.
//
// Title and service change only when a non-empty value is supplied, so required
// fields can never be blanked. Owner and summary change whenever a string value is
// supplied, including "", which clears them. An explicit null leaves every field
// untouched. UpdatedAt is refreshed even when nothing else changed.
func ApplyUpdate(current *domain.Incident, in UpdateInput, now time.Time) *domain.Incident {
	next := current.Clone()

	if title, ok := valueOf(in.Title); ok && title != "" {
		next.Title = title
	}
	if service, ok := valueOf(in.Service); ok && service != "" {
		next.Service = service
	}
	if severity, ok := valueOf(in.Severity); ok {
		next.Severity = severity
	}
	if status, ok := valueOf(in.Status); ok {
		next.Status = status
	}
	if owner, ok := valueOf(in.Owner); ok {
		next.Owner = &owner
	}
	if summary, ok := valueOf(in.Summary); ok {
		next.Summary = &summary
	}

	// updatedAt must strictly increase even if the clock has not moved.
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Microsecond)
	}
	next.UpdatedAt = now

	return next
}
