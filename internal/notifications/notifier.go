package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/bissquit/incident-tracker/internal/pkg/ctxlog"
	"golang.org/x/time/rate"
)

// Config configures a Notifier.
type Config struct {
	// Target is passed to the sender as Notification.To (the webhook URL).
	Target string
	// BaseURL, when set, is used to link to the incident.
	BaseURL string
	Worker  WorkerConfig
}

// Notifier queues incident change announcements and delivers them in the
// background. It implements incidents.ChangeNotifier.
type Notifier struct {
	config   WorkerConfig
	target   string
	baseURL  string
	sender   Sender
	renderer *Renderer
	limiter  *rate.Limiter
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	stopped bool
	queue   chan Payload
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewNotifier creates a new Notifier. Call Start to begin delivery.
func NewNotifier(cfg Config, sender Sender, renderer *Renderer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	wc := cfg.Worker.withDefaults()

	return &Notifier{
		config:   wc,
		target:   cfg.Target,
		baseURL:  cfg.BaseURL,
		sender:   sender,
		renderer: renderer,
		limiter:  wc.limiter(),
		logger:   logger.With("component", "notifications"),
		now:      time.Now,
		queue:    make(chan Payload, wc.QueueSize),
	}
}

// Start launches worker goroutines.
func (n *Notifier) Start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)

	n.logger.Info("starting notification workers",
		"workers", n.config.NumWorkers,
		"queue_size", n.config.QueueSize,
	)

	for i := 0; i < n.config.NumWorkers; i++ {
		n.wg.Add(1)
		go n.run(ctx, i)
	}
}

// Stop stops accepting notifications and waits for queued ones to be
// delivered. Deliveries still running when ctx expires are abandoned.
func (n *Notifier) Stop(ctx context.Context) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	close(n.queue)
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		n.logger.Warn("notification drain timed out, abandoning queued messages", "remaining", len(n.queue))
		if n.cancel != nil {
			n.cancel()
		}
		<-done
	}
	if n.cancel != nil {
		n.cancel()
	}
	n.logger.Info("notification workers stopped")
}

// IncidentCreated announces a new incident.
func (n *Notifier) IncidentCreated(ctx context.Context, incident *domain.Incident) {
	n.enqueue(ctx, NewCreatedPayload(incident, n.baseURL, n.now()))
}

// IncidentUpdated announces an update when severity or status changed.
func (n *Notifier) IncidentUpdated(ctx context.Context, before, after *domain.Incident) {
	payload, ok := NewUpdatedPayload(before, after, n.baseURL, n.now())
	if !ok {
		return
	}
	n.enqueue(ctx, payload)
}

// enqueue never blocks: when the queue is full or the notifier is stopped the
// payload is dropped and logged.
func (n *Notifier) enqueue(ctx context.Context, payload Payload) {
	log := ctxlog.FromContext(ctx)

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.stopped {
		log.Warn("notification dropped", "type", payload.MessageType, "error", ErrNotifierStopped)
		recordNotificationSent(payload.MessageType, statusDropped)
		return
	}

	select {
	case n.queue <- payload:
		recordQueueLength(len(n.queue))
	default:
		log.Warn("notification dropped", "type", payload.MessageType, "error", ErrQueueFull)
		recordNotificationSent(payload.MessageType, statusDropped)
	}
}
