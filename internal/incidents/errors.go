package incidents

import (
	"errors"
	"strings"
)

// Domain errors.
var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrDuplicateID      = errors.New("incident id already exists")
)

// ValidationError carries one message per violated rule, in rule order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// ValidationMessages returns the violated rule messages.
func (e *ValidationError) ValidationMessages() []string {
	return e.Messages
}
