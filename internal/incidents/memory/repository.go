// Package memory provides an in-memory implementation of the incidents repository.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
)

// Repository implements the incidents.Repository interface in process memory.
// It stores and returns copies, so callers never share state with the store.
type Repository struct {
	mu        sync.RWMutex
	incidents map[string]*domain.Incident
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{incidents: make(map[string]*domain.Incident)}
}

// Create stores a new incident.
func (r *Repository) Create(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.incidents[incident.ID]; exists {
		return fmt.Errorf("create incident %s: %w", incident.ID, incidents.ErrDuplicateID)
	}
	r.incidents[incident.ID] = incident.Clone()
	return nil
}

// Get returns a copy of the incident with the given id.
func (r *Repository) Get(_ context.Context, id string) (*domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inc, ok := r.incidents[id]
	if !ok {
		return nil, incidents.ErrIncidentNotFound
	}
	return inc.Clone(), nil
}

// Update replaces a stored incident.
func (r *Repository) Update(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[incident.ID]; !ok {
		return incidents.ErrIncidentNotFound
	}
	r.incidents[incident.ID] = incident.Clone()
	return nil
}

// List evaluates the query over a snapshot of the store.
func (r *Repository) List(ctx context.Context, q incidents.Query) ([]*domain.Incident, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}

	r.mu.RLock()
	snapshot := make([]*domain.Incident, 0, len(r.incidents))
	for _, inc := range r.incidents {
		if q.Matches(inc) {
			snapshot = append(snapshot, inc.Clone())
		}
	}
	r.mu.RUnlock()

	items, total := q.Apply(snapshot)
	return items, total, nil
}

// Count returns the number of stored incidents.
func (r *Repository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.incidents), nil
}
