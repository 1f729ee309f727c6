// Package render defines the contract between form engines and output
// renderers (HTML, JSON, terminal).
package render

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Form is the engine surface renderers depend on. *form.Engine satisfies it.
type Form interface {
	ID() string
	Config() form.Config
	Bindings(keys ...string) ([]form.Binding, error)
	FormErrors() []string
	ValidateAll(propagate bool) (map[string]any, error)
}

var _ Form = (*form.Engine)(nil)

// Renderer converts a form into a byte representation (HTML, JSON, a
// terminal session's collected values).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f Form, options Options) ([]byte, error)
}
