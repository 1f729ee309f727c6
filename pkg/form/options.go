package form

import (
	"maps"

	"github.com/rs/zerolog"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDefaults overlays initial values on top of the empty string every key
// starts with. Defaults for unknown keys make New fail.
func WithDefaults(values map[string]any) Option {
	return func(e *Engine) {
		if e.defaults == nil {
			e.defaults = make(map[string]any, len(values))
		}
		maps.Copy(e.defaults, values)
	}
}

// WithPolicy replaces the validation policy. Empty events fall back to the
// defaults.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithValidateFieldEvent sets the event that always validates a field.
func WithValidateFieldEvent(event Event) Option {
	return func(e *Engine) {
		e.policy.ValidateFieldEvent = event
	}
}

// WithValidateFieldErrorEvent sets the event that re-validates a field while
// it has an error.
func WithValidateFieldErrorEvent(event Event) Option {
	return func(e *Engine) {
		e.policy.ValidateFieldErrorEvent = event
	}
}

// WithFields restricts and orders the keys bound by Bindings when no keys are
// passed explicitly.
func WithFields(keys ...string) Option {
	return func(e *Engine) {
		e.config.Fields = append([]string(nil), keys...)
	}
}

// WithFormTags controls whether renderers wrap output in a submission
// container (an HTML <form> element). Enabled by default.
func WithFormTags(enabled bool) Option {
	return func(e *Engine) {
		e.config.FormTags = enabled
	}
}

// WithLogger attaches a logger; the engine logs nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithID fixes the form identifier instead of generating a UUID.
func WithID(id string) Option {
	return func(e *Engine) {
		e.id = id
	}
}

// Config is the presentation configuration renderers read from an engine.
type Config struct {
	FormTags bool     `json:"htmlFormTags"`
	Fields   []string `json:"fields,omitempty"`
}
