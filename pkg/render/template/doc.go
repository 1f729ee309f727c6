// Package template defines the template engine seam used by markup renderers.
// The pongo subpackage provides the default pongo2-backed implementation.
package template
