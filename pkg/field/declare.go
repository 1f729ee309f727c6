// Package field attaches presentation metadata (label, identifier, choices,
// enabled state, help text) to validation rules.
package field

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/choices"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// ErrNilRule is returned when a declaration is applied to a nil rule.
var ErrNilRule = errors.New("field: rule is nil")

// Metadata is the presentation metadata a caller declares for a field. Every
// member is optional.
type Metadata struct {
	Label        string              `yaml:"label,omitempty" json:"label,omitempty"`
	ID           string              `yaml:"id,omitempty" json:"id,omitempty"`
	SelectFrom   choices.UserChoices `yaml:"selectFrom,omitempty" json:"-"`
	Enabled      *bool               `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	HelpText     string              `yaml:"helpText,omitempty" json:"helpText,omitempty"`
	Placeholder  string              `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	HideOptional bool                `yaml:"hideOptional,omitempty" json:"hideOptional,omitempty"`
}

func (m Metadata) clone() Metadata {
	out := m
	if m.Enabled != nil {
		enabled := *m.Enabled
		out.Enabled = &enabled
	}
	return out
}

// overlay returns m with every member set in next taking precedence.
func (m Metadata) overlay(next Metadata) Metadata {
	out := m.clone()
	if next.Label != "" {
		out.Label = next.Label
	}
	if next.ID != "" {
		out.ID = next.ID
	}
	if !next.SelectFrom.IsZero() {
		out.SelectFrom = next.SelectFrom
	}
	if next.Enabled != nil {
		enabled := *next.Enabled
		out.Enabled = &enabled
	}
	if next.HelpText != "" {
		out.HelpText = next.HelpText
	}
	if next.Placeholder != "" {
		out.Placeholder = next.Placeholder
	}
	if next.HideOptional {
		out.HideOptional = true
	}
	return out
}

// Enable returns a pointer suitable for Metadata.Enabled.
func Enable(enabled bool) *bool {
	return &enabled
}

// Declaration is a rule wrapped with resolved metadata. It embeds the rule,
// so a Declaration is itself a schema.Field and can be placed in a
// schema.Object directly.
type Declaration struct {
	schema.Field

	Label        string
	ID           string
	SelectFrom   choices.List
	Enabled      bool
	HelpText     string
	Placeholder  string
	HideOptional bool

	meta Metadata
}

// Rule returns the wrapped validation rule.
func (d Declaration) Rule() schema.Field {
	return d.Field
}

// Metadata returns a copy of the metadata the declaration was built from.
func (d Declaration) Metadata() Metadata {
	return d.meta.clone()
}

// Decorator wraps a rule into a Declaration.
type Decorator interface {
	Decorate(rule schema.Field) (Declaration, error)
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(rule schema.Field) (Declaration, error)

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(rule schema.Field) (Declaration, error) {
	return fn(rule)
}

// Declare captures meta and returns a decorator that attaches it to a rule.
// The caller's metadata is copied, never mutated. Choices are normalized
// against the rule; invalid choices fail with a *DeclarationError. Declaring
// an existing Declaration overlays meta onto its metadata.
func Declare(meta Metadata) DecoratorFunc {
	captured := meta.clone()
	return func(rule schema.Field) (Declaration, error) {
		if rule == nil {
			return Declaration{}, ErrNilRule
		}

		resolved := captured.clone()
		if existing, ok := rule.(*Declaration); ok && existing != nil {
			rule = *existing
		}
		if existing, ok := rule.(Declaration); ok {
			resolved = existing.meta.overlay(captured)
			rule = existing.Field
		}

		list, err := choices.Normalize(rule, resolved.SelectFrom)
		if err != nil {
			return Declaration{}, &DeclarationError{Label: resolved.Label, Err: err}
		}

		enabled := true
		if resolved.Enabled != nil {
			enabled = *resolved.Enabled
		}

		return Declaration{
			Field:        rule,
			Label:        resolved.Label,
			ID:           resolved.ID,
			SelectFrom:   list,
			Enabled:      enabled,
			HelpText:     resolved.HelpText,
			Placeholder:  resolved.Placeholder,
			HideOptional: resolved.HideOptional,
			meta:         resolved,
		}, nil
	}
}

// Must panics when err is non-nil. It is meant for package level
// declarations:
//
//	var email = field.Must(field.Declare(meta)(schema.Email()))
func Must(decl Declaration, err error) Declaration {
	if err != nil {
		panic(err)
	}
	return decl
}

// From returns rule as a Declaration, wrapping undeclared rules with default
// metadata (enabled, no choices).
func From(rule schema.Field) Declaration {
	if decl, ok := rule.(Declaration); ok {
		return decl
	}
	if decl, ok := rule.(*Declaration); ok && decl != nil {
		return *decl
	}
	return Declaration{Field: rule, Enabled: true}
}

// Undeclared decorates rule with no metadata. Metadata from an existing
// declaration is dropped.
func Undeclared(rule schema.Field) Declaration {
	return Declaration{Field: From(rule).Rule(), Enabled: true}
}

// DeclarationError reports metadata that could not be attached to a rule.
type DeclarationError struct {
	Label string
	Err   error
}

func (e *DeclarationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("field: invalid declaration for %q: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("field: invalid declaration: %v", e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}
