package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/html"
	"github.com/goliatone/go-formstate/pkg/renderers/jsonview"
)

type RenderCmd struct {
	flags *Flags

	renderer     string
	templatesDir string
	themeFile    string
	themeVariant string
	fields       []string
	submitLabel  string
	action       string
	method       string
	horizontal   string
	inputOnly    bool
	hidden       []string
	values       []string
	validate     bool
	output       string
}

// NewRenderCmd creates a new render command.
func NewRenderCmd(flags *Flags) *RenderCmd {
	return &RenderCmd{flags: flags}
}

// Register adds the render command to the application.
func (cmd *RenderCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "render",
		Usage:     "Render a form as HTML or JSON",
		UsageText: "formstate --form signup.yaml render [options]",
		Description: `Renders the form's fields with their current state.

Use --set to prefill values and --validate to show the resulting errors.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "renderer",
				Aliases:     []string{"r"},
				Usage:       "output renderer (html, json)",
				Value:       html.Name,
				Destination: &cmd.renderer,
			},
			&cli.StringFlag{
				Name:        "templates",
				Usage:       "directory overriding the built-in HTML templates",
				Destination: &cmd.templatesDir,
			},
			&cli.StringFlag{
				Name:        "theme",
				Usage:       "theme manifest (YAML) providing tokens, CSS variables and assets",
				Destination: &cmd.themeFile,
			},
			&cli.StringFlag{
				Name:        "theme-variant",
				Usage:       "variant of the --theme manifest",
				Destination: &cmd.themeVariant,
			},
			&cli.StringSliceFlag{
				Name:        "field",
				Usage:       "render only these fields, in order (repeatable)",
				Destination: &cmd.fields,
			},
			&cli.StringFlag{
				Name:        "submit-label",
				Usage:       "add a submit button with this label",
				Destination: &cmd.submitLabel,
			},
			&cli.StringFlag{
				Name:        "action",
				Usage:       "form action URL",
				Destination: &cmd.action,
			},
			&cli.StringFlag{
				Name:        "method",
				Usage:       "form method",
				Destination: &cmd.method,
			},
			&cli.StringFlag{
				Name:        "horizontal",
				Usage:       "horizontal layout as LABEL_CLASS,VALUE_CLASS (e.g. col-sm-3,col-sm-9)",
				Destination: &cmd.horizontal,
			},
			&cli.BoolFlag{
				Name:        "input-only",
				Usage:       "emit bare controls without labels or feedback",
				Destination: &cmd.inputOnly,
			},
			&cli.StringSliceFlag{
				Name:        "hidden",
				Usage:       "hidden input as name=value (repeatable)",
				Destination: &cmd.hidden,
			},
			&cli.StringSliceFlag{
				Name:        "set",
				Usage:       "prefill a field as key=value (repeatable)",
				Destination: &cmd.values,
			},
			&cli.BoolFlag{
				Name:        "validate",
				Usage:       "validate the prefilled values before rendering",
				Destination: &cmd.validate,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output file (stdout if empty)",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RenderCmd) run(ctx context.Context, c *cli.Command) error {
	engine, err := cmd.flags.loadEngine(ctx, c)
	if err != nil {
		return err
	}

	values, err := parseAssignments(cmd.values)
	if err != nil {
		return err
	}
	for key, value := range values {
		if err := engine.SetValue(key, value); err != nil {
			return fmt.Errorf("--set: %w", err)
		}
	}
	if cmd.validate {
		if _, err := engine.ValidateAll(false); err != nil {
			return err
		}
	}

	options, err := cmd.options()
	if err != nil {
		return err
	}

	registry, err := cmd.registry()
	if err != nil {
		return err
	}
	renderer, err := registry.Get(cmd.renderer)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.List(), ", "))
	}

	out, err := renderer.Render(ctx, engine, options)
	if err != nil {
		return err
	}
	cmd.flags.Logger.Debug().
		Str("renderer", renderer.Name()).
		Str("form_id", engine.ID()).
		Int("bytes", len(out)).
		Msg("rendered form")
	return writeOutput(c, cmd.output, out)
}

func (cmd *RenderCmd) options() (render.Options, error) {
	options := render.Options{
		Fields:      cmd.fields,
		SubmitLabel: cmd.submitLabel,
		Action:      cmd.action,
		Method:      cmd.method,
		InputOnly:   cmd.inputOnly,
	}
	if cmd.horizontal != "" {
		label, value, ok := strings.Cut(cmd.horizontal, ",")
		if !ok {
			return render.Options{}, fmt.Errorf("--horizontal: want LABEL_CLASS,VALUE_CLASS, got %q", cmd.horizontal)
		}
		options.Horizontal = &render.Horizontal{
			LabelClass: strings.TrimSpace(label),
			ValueClass: strings.TrimSpace(value),
		}
	}
	for _, pair := range cmd.hidden {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return render.Options{}, fmt.Errorf("--hidden: want name=value, got %q", pair)
		}
		options.Hidden = append(options.Hidden, render.Hidden(strings.TrimSpace(name), value))
	}
	return options, nil
}

func (cmd *RenderCmd) registry() (*render.Registry, error) {
	htmlOptions := []html.Option{html.WithTemplatesDir(cmd.templatesDir)}
	if cmd.themeFile != "" {
		cfg, err := loadTheme(cmd.themeFile, cmd.themeVariant)
		if err != nil {
			return nil, err
		}
		htmlOptions = append(htmlOptions, html.WithTheme(cfg))
	} else if cmd.themeVariant != "" {
		return nil, errors.New("--theme-variant requires --theme")
	}

	htmlRenderer, err := html.New(htmlOptions...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(htmlRenderer); err != nil {
		return nil, err
	}
	if err := registry.Register(jsonview.New(jsonview.WithIndent("  "))); err != nil {
		return nil, err
	}
	return registry, nil
}
