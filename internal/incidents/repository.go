package incidents

import (
	"context"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// Repository persists incidents.
//
// Implementations return ErrIncidentNotFound for unknown ids and must never hand
// out references to their internal state.
type Repository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id string) (*domain.Incident, error)
	Update(ctx context.Context, incident *domain.Incident) error
	// List returns one window of the filtered set ordered by the query, and the
	// size of the whole filtered set.
	List(ctx context.Context, q Query) ([]*domain.Incident, int, error)
	Count(ctx context.Context) (int, error)
}
