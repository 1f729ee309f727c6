package form

import (
	"fmt"
	"strings"
)

// Event is a user interaction reported by a renderer.
type Event string

const (
	EventSubmit Event = "submit"
	EventBlur   Event = "blur"
	EventChange Event = "change"
)

// Precedence orders events from least to most frequent:
// submit < blur < change. Unknown events report -1.
func (e Event) Precedence() int {
	switch e {
	case EventSubmit:
		return 0
	case EventBlur:
		return 1
	case EventChange:
		return 2
	default:
		return -1
	}
}

// Valid reports whether e is one of the known events.
func (e Event) Valid() bool {
	return e.Precedence() >= 0
}

func (e Event) String() string {
	return string(e)
}

// ParseEvent converts a case-insensitive event name.
func ParseEvent(name string) (Event, error) {
	event := Event(strings.ToLower(strings.TrimSpace(name)))
	if !event.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEvent, name)
	}
	return event, nil
}

// Policy decides which events trigger single-field validation.
// ValidateFieldEvent always validates; ValidateFieldErrorEvent validates only
// while the field already has an error.
type Policy struct {
	ValidateFieldEvent      Event `json:"validateFieldEvent" yaml:"validateFieldEvent"`
	ValidateFieldErrorEvent Event `json:"validateFieldErrorEvent" yaml:"validateFieldErrorEvent"`
}

// DefaultPolicy validates on submit and re-validates invalid fields on every
// change.
func DefaultPolicy() Policy {
	return Policy{
		ValidateFieldEvent:      EventSubmit,
		ValidateFieldErrorEvent: EventChange,
	}
}

// SanitizePolicy fills missing events with the defaults. An error event with
// lower precedence than the field event is replaced with submit.
func SanitizePolicy(p Policy) Policy {
	defaults := DefaultPolicy()
	if p.ValidateFieldEvent == "" {
		p.ValidateFieldEvent = defaults.ValidateFieldEvent
	}
	if p.ValidateFieldErrorEvent == "" {
		p.ValidateFieldErrorEvent = defaults.ValidateFieldErrorEvent
	}
	if p.ValidateFieldErrorEvent.Precedence() < p.ValidateFieldEvent.Precedence() {
		p.ValidateFieldErrorEvent = EventSubmit
	}
	return p
}

// Validate reports unknown events in p.
func (p Policy) Validate() error {
	if p.ValidateFieldEvent != "" && !p.ValidateFieldEvent.Valid() {
		return fmt.Errorf("%w: validateFieldEvent %q", ErrInvalidEvent, p.ValidateFieldEvent)
	}
	if p.ValidateFieldErrorEvent != "" && !p.ValidateFieldErrorEvent.Valid() {
		return fmt.Errorf("%w: validateFieldErrorEvent %q", ErrInvalidEvent, p.ValidateFieldErrorEvent)
	}
	return nil
}
