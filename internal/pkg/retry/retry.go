// Package retry provides exponential backoff shared by connection setup and
// background delivery.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is an exponential backoff without jitter: Initial, Initial*Multiplier,
// ... capped at Max.
type Policy struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Max
	b.Multiplier = p.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = backoff.DefaultMultiplier
	}
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Delay returns the wait before retry number attempt. Attempts start at 1.
func (p Policy) Delay(attempt int) time.Duration {
	b := p.backOff()
	d := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Sleep waits for d or context cancellation. Returns false if cancelled.
func Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Permanent wraps err so that Do stops retrying and returns err.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn up to attempts times, waiting per policy between failures.
// onRetry, if set, is called before every wait. It returns the last error, or
// the context error if cancelled.
func Do(ctx context.Context, attempts int, policy Policy, fn func(attempt int) error, onRetry func(attempt int, wait time.Duration, err error)) error {
	if attempts <= 0 {
		attempts = 1
	}

	attempt := 0
	op := func() error {
		attempt++
		return fn(attempt)
	}
	notify := func(err error, wait time.Duration) {
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy.backOff(), uint64(attempts-1)), ctx)
	return backoff.RetryNotify(op, b, notify)
}
