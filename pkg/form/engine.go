// Package form owns the mutable state of an in-progress form: current
// values, per-field error messages and field statuses. It decides when a
// reported event validates a single field and when the whole form is
// validated, and projects each field into a Binding for renderers.
//
// An Engine belongs to one form session and is not safe for concurrent use.
package form

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Schema is the whole-object validator an Engine runs against.
// *schema.Object satisfies it.
type Schema interface {
	Keys() []string
	Field(key string) (schema.Field, bool)
	Validate(values map[string]any) (map[string]any, error)
}

// Status tracks whether a field has been validated since the last reset.
type Status int

const (
	StatusUntouched Status = iota
	StatusTouched
)

func (s Status) String() string {
	if s == StatusTouched {
		return "touched"
	}
	return "untouched"
}

// Engine holds form state for a schema.
type Engine struct {
	id       string
	schema   Schema
	keys     []string
	fields   map[string]field.Declaration
	policy   Policy
	config   Config
	defaults map[string]any
	logger   zerolog.Logger

	values     map[string]any
	errors     map[string]string
	formErrors []string
	status     map[string]Status
}

// New builds an engine for s. Every key starts with the empty string,
// overlaid with WithDefaults.
func New(s Schema, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, ErrNilSchema
	}

	e := &Engine{
		schema: s,
		keys:   slices.Clone(s.Keys()),
		policy: DefaultPolicy(),
		config: Config{FormTags: true},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	e.policy = SanitizePolicy(e.policy)

	e.fields = make(map[string]field.Declaration, len(e.keys))
	for _, key := range e.keys {
		rule, ok := s.Field(key)
		if !ok || rule == nil {
			return nil, fmt.Errorf("%w: schema lists %q without a rule", ErrUnknownField, key)
		}
		e.fields[key] = field.From(rule)
	}
	for key := range e.defaults {
		if _, ok := e.fields[key]; !ok {
			return nil, fmt.Errorf("%w: default for %q", ErrUnknownField, key)
		}
	}
	for _, key := range e.config.Fields {
		if _, ok := e.fields[key]; !ok {
			return nil, fmt.Errorf("%w: field list names %q", ErrUnknownField, key)
		}
	}

	if e.id == "" {
		e.id = uuid.NewString()
	}
	e.logger = e.logger.With().Str("form_id", e.id).Logger()

	e.values = make(map[string]any, len(e.keys))
	for _, key := range e.keys {
		e.values[key] = ""
	}
	maps.Copy(e.values, e.defaults)
	e.errors = make(map[string]string)
	e.status = make(map[string]Status, len(e.keys))

	return e, nil
}

// ID returns the form identifier.
func (e *Engine) ID() string {
	return e.id
}

// Keys returns the schema keys in order.
func (e *Engine) Keys() []string {
	return slices.Clone(e.keys)
}

// Policy returns the sanitized validation policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Config returns the presentation configuration.
func (e *Engine) Config() Config {
	cfg := e.config
	cfg.Fields = slices.Clone(cfg.Fields)
	return cfg
}

// Declaration returns the declared field for key.
func (e *Engine) Declaration(key string) (field.Declaration, error) {
	decl, ok := e.fields[key]
	if !ok {
		return field.Declaration{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return decl, nil
}

// Value returns the current value of key; nil when unset.
func (e *Engine) Value(key string) any {
	return e.values[key]
}

// Values returns a copy of the current values.
func (e *Engine) Values() map[string]any {
	return maps.Clone(e.values)
}

// Error returns the current message for key; empty when valid.
func (e *Engine) Error(key string) string {
	return e.errors[key]
}

// HasError reports whether key currently carries a message.
func (e *Engine) HasError(key string) bool {
	return e.errors[key] != ""
}

// Errors returns a copy of the per-field messages.
func (e *Engine) Errors() map[string]string {
	return maps.Clone(e.errors)
}

// FormErrors returns messages from the last whole-form validation that could
// not be attributed to a field.
func (e *Engine) FormErrors() []string {
	return slices.Clone(e.formErrors)
}

// Status reports whether key has been validated since the last reset.
func (e *Engine) Status(key string) Status {
	return e.status[key]
}

// SetValue replaces the value of key without validating it.
func (e *Engine) SetValue(key string, value any) error {
	if err := e.requireKey(key); err != nil {
		return err
	}
	e.values[key] = value
	return nil
}

// SetError stores message for key; an empty message clears it.
func (e *Engine) SetError(key, message string) error {
	if err := e.requireKey(key); err != nil {
		return err
	}
	if message == "" {
		delete(e.errors, key)
		return nil
	}
	e.errors[key] = message
	return nil
}

// ClearError removes the message for key.
func (e *Engine) ClearError(key string) error {
	return e.SetError(key, "")
}

// ClearAllErrors removes every field and form-level message.
func (e *Engine) ClearAllErrors() {
	clear(e.errors)
	e.formErrors = nil
}

// TriggerEvent records value for key, then validates the field when event is
// the policy's field event, or its error event while the field has an
// error.
func (e *Engine) TriggerEvent(key string, value any, event Event) error {
	if err := e.requireKey(key); err != nil {
		return err
	}
	if !event.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, event)
	}

	e.values[key] = value

	validate := event == e.policy.ValidateFieldEvent ||
		(event == e.policy.ValidateFieldErrorEvent && e.HasError(key))

	e.logger.Debug().
		Str("field", key).
		Str("event", string(event)).
		Bool("validate", validate).
		Msg("field event")

	if !validate {
		return nil
	}
	return e.ValidateField(key, value)
}

// ValidateField checks value against the rule for key and stores or clears
// its message. Rejected values are not Go errors; only an unknown key is.
func (e *Engine) ValidateField(key string, value any) error {
	decl, ok := e.fields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	res := decl.Check(value)
	if res.Valid() {
		delete(e.errors, key)
	} else {
		e.errors[key] = res.Error
	}
	e.status[key] = StatusTouched

	e.logger.Debug().
		Str("field", key).
		Bool("valid", res.Valid()).
		Msg("field validated")
	return nil
}

// ValidateAll clears every message and validates the current values as a
// whole. On success it returns the cleaned values. A validation failure is
// recorded in the engine and returned as *ValidationError only when
// propagate is true; otherwise the result is (nil, nil). Errors the schema
// does not report as validation failures are always returned unchanged.
func (e *Engine) ValidateAll(propagate bool) (map[string]any, error) {
	e.ClearAllErrors()

	cleaned, err := e.schema.Validate(maps.Clone(e.values))
	if err == nil {
		e.touchAll()
		e.logger.Debug().Msg("form validated")
		return cleaned, nil
	}

	messages, ok := extractMessages(err)
	if !ok {
		return nil, err
	}
	e.touchAll()

	mapping := mapMessages(e.keys, messages)
	fields := make(map[string]string, len(mapping.Fields))
	for key, list := range mapping.Fields {
		if len(list) == 0 {
			continue
		}
		joined := strings.Join(list, "; ")
		e.errors[key] = joined
		fields[key] = joined
	}
	e.formErrors = mapping.Form

	e.logger.Debug().
		Int("field_errors", len(fields)).
		Int("form_errors", len(mapping.Form)).
		Msg("form validation failed")

	if !propagate {
		return nil, nil
	}
	return nil, &ValidationError{Fields: fields, Form: slices.Clone(mapping.Form), Err: err}
}

func (e *Engine) touchAll() {
	for _, key := range e.keys {
		e.status[key] = StatusTouched
	}
}

// Reset clears values, messages and statuses. Values become an empty map,
// not the initial defaults.
func (e *Engine) Reset() {
	e.values = make(map[string]any)
	e.ClearAllErrors()
	clear(e.status)
}

func (e *Engine) requireKey(key string) error {
	if _, ok := e.fields[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}
