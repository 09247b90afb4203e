package notifications

import (
	"context"
	"time"

	"github.com/bissquit/incident-tracker/internal/pkg/retry"
	"golang.org/x/time/rate"
)

// WorkerConfig contains delivery configuration.
type WorkerConfig struct {
	NumWorkers        int
	QueueSize         int
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// RatePerSecond caps outgoing webhook calls across all workers. Zero means
	// unlimited.
	RatePerSecond float64
	Burst         int
}

// DefaultWorkerConfig returns default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		NumWorkers:        2,
		QueueSize:         256,
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        1 * time.Minute,
		BackoffMultiplier: 2.0,
		RatePerSecond:     5,
		Burst:             5,
	}
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	d := DefaultWorkerConfig()
	if c.NumWorkers <= 0 {
		c.NumWorkers = d.NumWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = d.BackoffMultiplier
	}
	return c
}

func (c WorkerConfig) limiter() *rate.Limiter {
	if c.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(c.RatePerSecond), max(c.Burst, 1))
}

func (c WorkerConfig) backoff() retry.Policy {
	return retry.Policy{
		Initial:    c.InitialBackoff,
		Max:        c.MaxBackoff,
		Multiplier: c.BackoffMultiplier,
	}
}

func (n *Notifier) run(ctx context.Context, workerID int) {
	defer n.wg.Done()

	for payload := range n.queue {
		recordQueueLength(len(n.queue))
		n.deliver(ctx, workerID, payload)
	}
}

// deliver renders and sends one payload, retrying retryable errors with backoff.
func (n *Notifier) deliver(ctx context.Context, workerID int, payload Payload) {
	start := time.Now()
	log := n.logger.With(
		"worker", workerID,
		"incident_id", payload.Incident.ID,
		"message_type", payload.MessageType,
	)

	subject, body, err := n.renderer.Render(payload)
	if err != nil {
		log.Error("failed to render notification", "error", err)
		recordNotificationSent(payload.MessageType, statusFailed)
		return
	}
	notification := Notification{To: n.target, Subject: subject, Body: body}

	for attempt := 1; ; attempt++ {
		if err := n.limiter.Wait(ctx); err != nil {
			log.Warn("notification abandoned", "error", err)
			recordNotificationSent(payload.MessageType, statusFailed)
			return
		}

		err := n.sender.Send(ctx, notification)
		if err == nil {
			recordNotificationSent(payload.MessageType, statusSuccess)
			recordNotificationDuration(time.Since(start))
			log.Debug("notification sent", "attempts", attempt, "duration", time.Since(start))
			return
		}

		log.Warn("send failed",
			"attempt", attempt,
			"max_attempts", n.config.MaxAttempts,
			"error", err,
		)

		if !isRetryable(err) || attempt >= n.config.MaxAttempts {
			log.Error("notification failed", "attempts", attempt, "error", err)
			recordNotificationSent(payload.MessageType, statusFailed)
			return
		}

		recordNotificationSent(payload.MessageType, statusRetry)
		if !retry.Sleep(ctx, n.config.backoff().Delay(attempt)) {
			log.Warn("notification abandoned during backoff")
			recordNotificationSent(payload.MessageType, statusFailed)
			return
		}
	}
}
