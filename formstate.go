// Package formstate is the quick-start entry point: it renders forms built
// with pkg/form, or converted from an OpenAPI operation, as HTML.
package formstate

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/html"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// RenderOptions aliases render.Options for callers that only import the
// root package.
type RenderOptions = render.Options

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// New builds a form engine for s.
func New(s *schema.Object, options ...form.Option) (*form.Engine, error) {
	return form.New(s, options...)
}

// RenderHTML renders f with the HTML renderer.
func RenderHTML(ctx context.Context, f render.Form, options RenderOptions, htmlOptions ...html.Option) ([]byte, error) {
	renderer, err := html.New(htmlOptions...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, f, options)
}

// GenerateHTML loads the OpenAPI document at src, converts the request body
// of operationID and renders the resulting form.
func GenerateHTML(ctx context.Context, src openapi.Source, operationID string, options RenderOptions, htmlOptions ...html.Option) ([]byte, error) {
	doc, err := openapi.LoadFormFrom(ctx, src, operationID)
	if err != nil {
		return nil, err
	}
	engine, err := doc.NewEngine()
	if err != nil {
		return nil, err
	}
	return RenderHTML(ctx, engine, options, htmlOptions...)
}
