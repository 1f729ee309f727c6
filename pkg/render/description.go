package render

import (
	"fmt"

	"github.com/goliatone/go-formstate/pkg/choices"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/widgets"
)

// Description is the renderer-neutral, serializable view of a binding.
type Description struct {
	Key         string       `json:"key"`
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Widget      string       `json:"widget"`
	Kinds       []string     `json:"kinds,omitempty"`
	Value       any          `json:"value"`
	Error       string       `json:"error,omitempty"`
	Status      string       `json:"status"`
	Enabled     bool         `json:"enabled"`
	Required    bool         `json:"required"`
	HelpText    string       `json:"helpText,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Choices     choices.List `json:"choices" jsonschema:"description=Grouped options; null when the field has no choices"`
}

// Document describes a whole form.
type Document struct {
	ID         string        `json:"id"`
	FormTags   bool          `json:"htmlFormTags"`
	FormErrors []string      `json:"formErrors,omitempty"`
	Hidden     []HiddenField `json:"hidden,omitempty"`
	Fields     []Description `json:"fields"`
}

// Describe projects a binding, resolving its widget with reg (the built-in
// registry when nil).
func Describe(binding form.Binding, reg *widgets.Registry) Description {
	if reg == nil {
		reg = defaultWidgets
	}
	desc := Description{
		Key:         binding.Key,
		ID:          binding.ID,
		Label:       binding.Label,
		Widget:      reg.Resolve(binding),
		Value:       binding.Value,
		Error:       binding.Error,
		Status:      binding.Status.String(),
		Enabled:     binding.Enabled,
		Required:    binding.Required,
		HelpText:    binding.HelpText,
		Placeholder: binding.Placeholder,
		Choices:     binding.Choices,
	}
	if binding.Rule != nil {
		desc.Kinds = binding.Rule.Kinds()
	}
	return desc
}

// DescribeForm projects every binding selected by options.
func DescribeForm(f Form, options Options, reg *widgets.Registry) (Document, error) {
	if f == nil {
		return Document{}, ErrNilForm
	}
	bindings, err := f.Bindings(options.Fields...)
	if err != nil {
		return Document{}, fmt.Errorf("render: bind fields: %w", err)
	}

	doc := Document{
		ID:         f.ID(),
		FormTags:   options.UseFormTags(f),
		FormErrors: f.FormErrors(),
		Hidden:     SortedHiddenFields(options.Hidden),
		Fields:     make([]Description, 0, len(bindings)),
	}
	for _, binding := range bindings {
		doc.Fields = append(doc.Fields, Describe(binding, reg))
	}
	return doc, nil
}

var defaultWidgets = widgets.NewRegistry()
