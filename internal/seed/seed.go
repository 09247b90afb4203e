// Package seed fills an incident store with random sample data.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/google/uuid"
)

// DefaultCount is the number of incidents inserted by default.
const DefaultCount = 200

// Window is how far back generated incidents are spread.
const Window = 90 * 24 * time.Hour

var services = []string{
	"Auth Service", "Payment Gateway", "User Service", "API Gateway",
	"Database Cluster", "Cache Layer", "Search Service", "Email Service",
	"Notification Service", "Analytics Engine", "CDN", "Load Balancer",
	"Message Queue", "Storage Service", "Logging Service",
}

var titleTemplates = []string{
	"High latency detected in %s",
	"%s experiencing connection timeouts",
	"Database deadlock in %s",
	"Memory leak detected in %s",
	"%s returning 5xx errors",
	"Service degradation in %s",
	"API rate limit exceeded for %s",
	"Disk space critical on %s",
	"Network connectivity issues with %s",
	"Configuration error in %s",
	"Security vulnerability found in %s",
	"Data corruption detected in %s",
	"Performance degradation on %s",
	"%s failed health check",
	"Deployment rollback needed for %s",
}

// Empty entries leave the incident without an owner.
var owners = []string{
	"John Doe", "Jane Smith", "Bob Johnson", "Alice Williams",
	"Charlie Brown", "Diana Prince", "Ethan Hunt", "Fiona Gallagher",
	"", "",
}

var summaryTemplates = []string{
	"Investigating %[1]s incident affecting %[2]s. Initial diagnostics show elevated error rates.",
	"Multiple users reporting issues with %[2]s. Team is actively investigating root cause.",
	"Automated alerts triggered for %[2]s. Monitoring metrics indicate abnormal behavior.",
	"Production incident detected in %[2]s. Engineering team has been paged.",
	"Service degradation observed in %[2]s. Impact assessment in progress.",
	"",
}

// Generator produces random incidents.
type Generator struct {
	rng   *rand.Rand
	now   time.Time
	newID func() string
}

// NewGenerator returns a generator whose field values are determined by seed.
// Ids stay random, so reseeding with the same seed never collides with rows
// already stored. Incidents are spread over Window before now.
func NewGenerator(seed uint64, now time.Time) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:   now.UTC().Truncate(time.Microsecond),
		newID: uuid.NewString,
	}
}

// Incident returns a new random incident. Resolved and mitigated incidents
// outnumber open ones; open incidents have never been updated.
func (g *Generator) Incident() *domain.Incident {
	service := services[g.rng.IntN(len(services))]
	severity := domain.Severities[g.rng.IntN(len(domain.Severities))]

	var status domain.IncidentStatus
	switch roll := g.rng.Float64(); {
	case roll < 0.6:
		status = domain.IncidentStatusResolved
	case roll < 0.8:
		status = domain.IncidentStatusMitigated
	default:
		status = domain.IncidentStatusOpen
	}

	createdAt := g.now.Add(-Window).Add(time.Duration(g.rng.Float64() * float64(Window))).Truncate(time.Microsecond)
	updatedAt := createdAt
	if status != domain.IncidentStatusOpen {
		updatedAt = createdAt.Add(time.Duration(g.rng.Float64() * float64(48*time.Hour))).Truncate(time.Microsecond)
		if updatedAt.After(g.now) {
			updatedAt = g.now
		}
	}

	inc := &domain.Incident{
		ID:        g.newID(),
		Title:     fmt.Sprintf(titleTemplates[g.rng.IntN(len(titleTemplates))], service),
		Service:   service,
		Severity:  severity,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if owner := owners[g.rng.IntN(len(owners))]; owner != "" {
		inc.Owner = &owner
	}
	if tmpl := summaryTemplates[g.rng.IntN(len(summaryTemplates))]; tmpl != "" {
		summary := fmt.Sprintf(tmpl, severity, service)
		inc.Summary = &summary
	}
	return inc
}

// Options configures Run.
type Options struct {
	Count int
	// Force inserts even when the store already holds incidents.
	Force bool
	Seed  uint64
	Now   time.Time
}

// Run inserts opts.Count random incidents into repo and returns how many were
// inserted. Unless opts.Force is set, a non-empty store is left untouched.
func Run(ctx context.Context, repo incidents.Repository, opts Options, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	if !opts.Force {
		existing, err := repo.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count incidents: %w", err)
		}
		if existing > 0 {
			logger.Info("store already seeded, skipping", "incidents", existing)
			return 0, nil
		}
	}

	gen := NewGenerator(opts.Seed, opts.Now)
	for i := 0; i < opts.Count; i++ {
		if err := repo.Create(ctx, gen.Incident()); err != nil {
			return i, fmt.Errorf("create incident %d: %w", i+1, err)
		}
	}

	logger.Info("seeded incidents", "count", opts.Count)
	return opts.Count, nil
}
