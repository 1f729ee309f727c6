// Package html renders forms as Bootstrap-flavoured HTML markup using pongo2
// templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formstate/pkg/render"
	rendertemplate "github.com/goliatone/go-formstate/pkg/render/template"
	"github.com/goliatone/go-formstate/pkg/render/template/pongo"
	"github.com/goliatone/go-formstate/pkg/widgets"
)

const (
	// Name identifies the renderer in a render.Registry.
	Name        = "html"
	contentType = "text/html; charset=utf-8"
	formTpl     = "form"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	widgets          *widgets.Registry
}

// WithTemplatesFS supplies an alternate template bundle. It must provide the
// same template names as TemplatesFS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies theme tokens and CSS variables. Tokens prefixed with
// ClassTokenPrefix replace chrome classes.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = copyTheme(cfg)
	}
}

// WithWidgets overrides the widget registry.
func WithWidgets(reg *widgets.Registry) Option {
	return func(cfg *config) {
		if reg != nil {
			cfg.widgets = reg
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	theme     *theme.RendererConfig
	classes   map[string]string
	widgets   *widgets.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithName("formstate-html"),
			pongo.WithFS(cfg.templateFS),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates: templates,
		theme:     cfg.theme,
		classes:   resolveClasses(cfg.theme),
		widgets:   cfg.widgets,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return contentType
}

// Render produces the markup for f. Engine state is only read.
func (r *Renderer) Render(ctx context.Context, f render.Form, options render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := render.DescribeForm(f, options, r.widgets)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	out, err := r.templates.RenderTemplate(formTpl, r.buildView(doc, options))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) buildView(doc render.Document, options render.Options) map[string]any {
	fields := make([]any, 0, len(doc.Fields))
	for _, desc := range doc.Fields {
		fields = append(fields, r.fieldView(desc))
	}

	hidden := make([]any, 0, len(doc.Hidden))
	for _, entry := range doc.Hidden {
		hidden = append(hidden, map[string]any{"name": entry.Name, "value": entry.Value})
	}
	formErrors := make([]any, 0, len(doc.FormErrors))
	for _, message := range doc.FormErrors {
		formErrors = append(formErrors, message)
	}

	classes := make(map[string]any, len(r.classes))
	for key, value := range r.classes {
		classes[key] = value
	}

	view := map[string]any{
		"id":           doc.ID,
		"formTags":     doc.FormTags,
		"action":       strings.TrimSpace(options.Action),
		"method":       strings.ToLower(strings.TrimSpace(options.Method)),
		"submitLabel":  strings.TrimSpace(options.SubmitLabel),
		"inputOnly":    options.InputOnly,
		"formErrors":   formErrors,
		"hiddenFields": hidden,
		"fields":       fields,
		"classes":      classes,
	}
	if options.Horizontal != nil && !options.InputOnly {
		view["horizontal"] = map[string]any{
			"labelClass": options.Horizontal.LabelClass,
			"valueClass": options.Horizontal.ValueClass,
		}
	}
	if r.theme != nil && doc.FormTags {
		view["themeName"] = r.theme.Theme
		view["themeVariant"] = r.theme.Variant
		view["style"] = cssVarsStyle(r.theme.CSSVars)
		if r.theme.AssetURL != nil {
			view["stylesheet"] = r.theme.AssetURL(StylesheetKey)
		}
	}
	return view
}

func (r *Renderer) fieldView(desc render.Description) map[string]any {
	value := formatValue(desc.Value)
	controlClass := r.classes["input"]
	inputType := "text"
	inputMode := ""
	required := desc.Required

	switch desc.Widget {
	case widgets.WidgetSelect:
		controlClass = r.classes["select"]
	case widgets.WidgetCheckbox:
		controlClass = r.classes["checkInput"]
		inputType = "checkbox"
		required = false
	case widgets.WidgetNumber:
		inputMode = "decimal"
		if slices.Contains(desc.Kinds, "integer") {
			inputMode = "numeric"
		}
	case widgets.WidgetEmail, widgets.WidgetPassword, widgets.WidgetDate, widgets.WidgetURL:
		inputType = desc.Widget
	}
	if desc.Error != "" {
		controlClass = strings.TrimSpace(controlClass + " " + r.classes["invalid"])
	}

	help := sanitizeHelp(desc.HelpText)
	var describedBy []string
	if desc.Error != "" {
		describedBy = append(describedBy, desc.ID+"-error")
	}
	if help != "" {
		describedBy = append(describedBy, desc.ID+"-help")
	}

	view := map[string]any{
		"key":          desc.Key,
		"id":           desc.ID,
		"label":        desc.Label,
		"widget":       desc.Widget,
		"value":        value,
		"checked":      isChecked(desc.Value),
		"error":        desc.Error,
		"help":         help,
		"placeholder":  desc.Placeholder,
		"required":     required,
		"disabled":     !desc.Enabled,
		"inputType":    inputType,
		"inputMode":    inputMode,
		"controlClass": controlClass,
		"describedBy":  strings.Join(describedBy, " "),
	}
	if desc.Widget == widgets.WidgetSelect {
		view["groups"] = groupViews(desc, value)
		view["blankOption"] = desc.Placeholder != "" || !desc.Required
	}
	return view
}

func groupViews(desc render.Description, selected string) []any {
	groups := make([]any, 0, len(desc.Choices))
	for _, group := range desc.Choices {
		options := make([]any, 0, len(group.Options))
		for _, option := range group.Options {
			options = append(options, map[string]any{
				"value":    option.Value,
				"label":    option.Label,
				"selected": option.Value == selected,
			})
		}
		groups = append(groups, map[string]any{
			"name":    group.Name,
			"options": options,
		})
	}
	return groups
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func isChecked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		checked, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && checked
	default:
		return false
	}
}
