package form

import (
	"github.com/goliatone/go-formstate/pkg/choices"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// OptionalSuffix is appended to the label of enabled fields that accept
// empty input.
const OptionalSuffix = " (optional)"

// Binding is the per-field projection handed to renderers. It is a snapshot:
// it holds no state of its own and reports interactions back to the engine
// through Report.
type Binding struct {
	Key         string
	ID          string
	Label       string
	Value       any
	Error       string
	Status      Status
	Enabled     bool
	Required    bool
	HelpText    string
	Placeholder string
	Choices     choices.List
	Rule        schema.Field

	report func(value any, event Event) error
}

// Report forwards a user interaction to the engine's TriggerEvent.
func (b Binding) Report(value any, event Event) error {
	if b.report == nil {
		return ErrDetachedBinding
	}
	return b.report(value, event)
}

// BindOption overrides a computed binding attribute.
type BindOption func(*Binding)

func OverrideLabel(label string) BindOption {
	return func(b *Binding) { b.Label = label }
}

func OverrideID(id string) BindOption {
	return func(b *Binding) { b.ID = id }
}

func OverrideEnabled(enabled bool) BindOption {
	return func(b *Binding) { b.Enabled = enabled }
}

func OverrideHelpText(text string) BindOption {
	return func(b *Binding) { b.HelpText = text }
}

func OverridePlaceholder(text string) BindOption {
	return func(b *Binding) { b.Placeholder = text }
}

func OverrideChoices(list choices.List) BindOption {
	return func(b *Binding) { b.Choices = list }
}

func OverrideValue(value any) BindOption {
	return func(b *Binding) { b.Value = value }
}

func OverrideError(message string) BindOption {
	return func(b *Binding) { b.Error = message }
}

// Bind projects key into a Binding. Overrides apply after every computed
// default.
func (e *Engine) Bind(key string, overrides ...BindOption) (Binding, error) {
	decl, err := e.Declaration(key)
	if err != nil {
		return Binding{}, err
	}

	binding := Binding{
		Key:         key,
		ID:          key,
		Label:       labelFor(key, decl),
		Value:       e.values[key],
		Error:       e.errors[key],
		Status:      e.status[key],
		Enabled:     decl.Enabled,
		Required:    !decl.AcceptsEmpty(),
		HelpText:    decl.HelpText,
		Placeholder: decl.Placeholder,
		Choices:     decl.SelectFrom,
		Rule:        decl.Rule(),
		report: func(value any, event Event) error {
			return e.TriggerEvent(key, value, event)
		},
	}
	if decl.ID != "" {
		binding.ID = decl.ID
	}

	for _, override := range overrides {
		if override != nil {
			override(&binding)
		}
	}
	return binding, nil
}

// Bindings projects keys in order. Without keys it uses the WithFields list,
// falling back to every schema key.
func (e *Engine) Bindings(keys ...string) ([]Binding, error) {
	if len(keys) == 0 {
		keys = e.config.Fields
	}
	if len(keys) == 0 {
		keys = e.keys
	}

	out := make([]Binding, 0, len(keys))
	for _, key := range keys {
		binding, err := e.Bind(key)
		if err != nil {
			return nil, err
		}
		out = append(out, binding)
	}
	return out, nil
}

func labelFor(key string, decl field.Declaration) string {
	label := decl.Label
	if label == "" {
		label = field.Humanize(key)
	}
	if decl.AcceptsEmpty() && decl.Enabled && !decl.HideOptional {
		label += OptionalSuffix
	}
	return label
}
