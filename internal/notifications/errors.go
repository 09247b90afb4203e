package notifications

import (
	"errors"
	"fmt"
)

// Queue errors.
var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrNotifierStopped  = errors.New("notifier is stopped")
	ErrTemplateNotFound = errors.New("template not found")
)

// isRetryable checks if an error is retryable.
// Errors that do not say otherwise are retried.
func isRetryable(err error) bool {
	var r interface{ IsRetryable() bool }
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return true
}

// RetryableError wraps an error and marks it as retryable or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%v (retryable=%t)", e.Err, e.Retryable)
}

// IsRetryable returns whether the error is retryable.
func (e *RetryableError) IsRetryable() bool {
	return e.Retryable
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError creates a non-retryable error.
func NewNonRetryableError(err error) *RetryableError {
	return &RetryableError{Err: err, Retryable: false}
}
