// Package jsonview renders forms as JSON field descriptions for client-side
// renderers.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/widgets"
)

// Name identifies the renderer in a render.Registry.
const Name = "json"

type Option func(*Renderer)

// WithIndent pretty-prints output with the given indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithWidgets overrides the widget registry.
func WithWidgets(reg *widgets.Registry) Option {
	return func(r *Renderer) {
		if reg != nil {
			r.widgets = reg
		}
	}
}

type Renderer struct {
	indent  string
	widgets *widgets.Registry
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render marshals a render.Document for f.
func (r *Renderer) Render(ctx context.Context, f render.Form, options render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := render.DescribeForm(f, options, r.widgets)
	if err != nil {
		return nil, fmt.Errorf("json renderer: %w", err)
	}

	var payload []byte
	if r.indent != "" {
		payload, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		payload, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: marshal document: %w", err)
	}
	return payload, nil
}

// DescriptionSchema returns the JSON Schema of the document this renderer
// emits.
func DescriptionSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return reflector.Reflect(new(render.Document))
}
