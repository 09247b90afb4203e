// Package incidents implements incident tracking: payload validation, the list
// query engine, partial-update merging, and the HTTP surface over a Repository.
package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/pkg/ctxlog"
	"github.com/bissquit/incident-tracker/internal/pkg/metrics"
	"github.com/google/uuid"
)

// ChangeNotifier is told about persisted changes. Implementations must not block.
type ChangeNotifier interface {
	IncidentCreated(ctx context.Context, incident *domain.Incident)
	IncidentUpdated(ctx context.Context, before, after *domain.Incident)
}

type noopNotifier struct{}

func (noopNotifier) IncidentCreated(context.Context, *domain.Incident)                   {}
func (noopNotifier) IncidentUpdated(context.Context, *domain.Incident, *domain.Incident) {}

// Service implements incident business logic.
type Service struct {
	repo     Repository
	notifier ChangeNotifier
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the change notifier.
func WithNotifier(n ChangeNotifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a new incident service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		notifier: noopNotifier{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput holds a validated create payload.
type CreateInput struct {
	Title    string
	Service  string
	Severity domain.Severity
	Status   domain.IncidentStatus
	Owner    *string
	Summary  *string
}

// Create stores a new incident with a fresh id and createdAt == updatedAt.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Incident, error) {
	now := s.now().UTC().Truncate(time.Microsecond)
	inc := &domain.Incident{
		ID:        s.newID(),
		Title:     in.Title,
		Service:   in.Service,
		Severity:  in.Severity,
		Status:    in.Status,
		Owner:     copyString(in.Owner),
		Summary:   copyString(in.Summary),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, inc); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}
	metrics.IncidentMutations.WithLabelValues(metrics.OperationCreate).Inc()

	ctx = ctxlog.With(ctx, "incident_id", inc.ID)
	ctxlog.FromContext(ctx).Info("incident created",
		"service", inc.Service,
		"severity", inc.Severity,
		"status", inc.Status,
	)
	s.notifier.IncidentCreated(ctx, inc.Clone())

	return inc, nil
}

// Get returns the incident with the given id. Ids that are not UUIDs are
// reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*domain.Incident, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIncidentNotFound
	}
	return s.repo.Get(ctx, parsed.String())
}

// List returns one page of incidents for the given parameters.
func (s *Service) List(ctx context.Context, params ListParams) (*Page, error) {
	q := NewQuery(params)
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return NewPage(q, items, total), nil
}

// Update applies a partial update to an existing incident. Concurrent updates of
// the same incident are last-writer-wins.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Incident, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := ApplyUpdate(current, in, s.now())
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("update incident: %w", err)
	}
	metrics.IncidentMutations.WithLabelValues(metrics.OperationUpdate).Inc()

	ctxlog.FromContext(ctx).Info("incident updated",
		"severity", next.Severity,
		"status", next.Status,
	)
	s.notifier.IncidentUpdated(ctx, current, next.Clone())

	return next, nil
}
