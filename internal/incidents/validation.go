package incidents

import (
	"fmt"
	"strings"

	"github.com/bissquit/incident-tracker/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Validation messages.
const (
	MsgTitleRequired   = "Title is required"
	MsgTitleTooLong    = "Title must not exceed 200 characters"
	MsgServiceRequired = "Service is required"
	MsgServiceTooLong  = "Service must not exceed 100 characters"
	MsgInvalidSeverity = "Invalid severity level"
	MsgInvalidStatus   = "Invalid status"
	MsgOwnerTooLong    = "Owner must not exceed 100 characters"
	MsgSummaryTooLong  = "Summary must not exceed 2000 characters"
	MsgInvalidJSONBody = "Invalid JSON body"
)

const (
	tagNotBlank       = "notblank"
	tagSeverity       = "severity"
	tagIncidentStatus = "incident_status"
)

type rule struct {
	tag     string
	message string
}

var (
	titleRequired   = rule{tagNotBlank, MsgTitleRequired}
	titleLength     = rule{fmt.Sprintf("max=%d", domain.MaxTitleLength), MsgTitleTooLong}
	serviceRequired = rule{tagNotBlank, MsgServiceRequired}
	serviceLength   = rule{fmt.Sprintf("max=%d", domain.MaxServiceLength), MsgServiceTooLong}
	severityMember  = rule{tagSeverity, MsgInvalidSeverity}
	statusMember    = rule{tagIncidentStatus, MsgInvalidStatus}
	ownerLength     = rule{fmt.Sprintf("max=%d", domain.MaxOwnerLength), MsgOwnerTooLong}
	summaryLength   = rule{fmt.Sprintf("max=%d", domain.MaxSummaryLength), MsgSummaryTooLong}
)

// Validator checks create and update payloads. Every rule is evaluated and all
// violations are reported together.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the incident-specific tags registered.
func NewValidator() *Validator {
	v := validator.New()
	mustRegister(v, tagNotBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, tagSeverity, func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseSeverity(fl.Field().String())
		return ok
	})
	mustRegister(v, tagIncidentStatus, func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseIncidentStatus(fl.Field().String())
		return ok
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// ValidateCreate checks a create payload.
func (v *Validator) ValidateCreate(req CreateIncidentRequest) error {
	var c collector
	c.check(v.validate, req.Title, titleRequired, titleLength)
	c.check(v.validate, req.Service, serviceRequired, serviceLength)
	c.check(v.validate, req.Severity, severityMember)
	c.check(v.validate, req.Status, statusMember)
	if req.Owner != nil {
		c.check(v.validate, *req.Owner, ownerLength)
	}
	if req.Summary != nil {
		c.check(v.validate, *req.Summary, summaryLength)
	}
	return c.err()
}

// ValidateUpdate checks an update payload. Fields without a value are skipped.
func (v *Validator) ValidateUpdate(req UpdateIncidentRequest) error {
	var c collector
	if title, ok := valueOf(req.Title); ok {
		c.check(v.validate, title, titleLength)
	}
	if service, ok := valueOf(req.Service); ok {
		c.check(v.validate, service, serviceLength)
	}
	if severity, ok := valueOf(req.Severity); ok {
		c.check(v.validate, severity, severityMember)
	}
	if status, ok := valueOf(req.Status); ok {
		c.check(v.validate, status, statusMember)
	}
	if owner, ok := valueOf(req.Owner); ok {
		c.check(v.validate, owner, ownerLength)
	}
	if summary, ok := valueOf(req.Summary); ok {
		c.check(v.validate, summary, summaryLength)
	}
	return c.err()
}

type collector struct {
	messages []string
}

func (c *collector) check(v *validator.Validate, value string, rules ...rule) {
	for _, r := range rules {
		if err := v.Var(value, r.tag); err != nil {
			c.messages = append(c.messages, r.message)
		}
	}
}

func (c *collector) err() error {
	if len(c.messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: c.messages}
}
