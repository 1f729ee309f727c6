package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// StylesheetKey is the asset key resolved through the theme's AssetURL to
// link a stylesheet ahead of the form.
const StylesheetKey = "formstate.css"

// TemplatesFS exposes the embedded template bundle (form.tpl, field.tpl,
// control.tpl, feedback.tpl) so callers can copy and customise it.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
