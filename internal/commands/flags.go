package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formfile"
	"github.com/goliatone/go-formstate/pkg/openapi"
)

var errNoSource = errors.New("no form source: pass --form or --openapi with --operation")

type Flags struct {
	FormFile  string
	OpenAPI   string
	Operation string

	// Config holds the environment defaults; global flags write into it.
	Config config.Config

	// Logger is built in the Before hook.
	Logger zerolog.Logger
}

// globalFlags are inherited by every subcommand.
func (f *Flags) globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       f.Config.LogLevel,
			Destination: &f.Config.LogLevel,
		},
		&cli.StringFlag{
			Name:        "form",
			Aliases:     []string{"f"},
			Usage:       "path to a YAML form file",
			Destination: &f.FormFile,
		},
		&cli.StringFlag{
			Name:        "openapi",
			Usage:       "path or http(s) URL of an OpenAPI document (JSON or YAML)",
			Destination: &f.OpenAPI,
		},
		&cli.StringFlag{
			Name:        "operation",
			Usage:       "operation id (or method:path) whose request body becomes the form",
			Destination: &f.Operation,
		},
		&cli.StringFlag{
			Name:        "validate-field-event",
			Usage:       "event that always validates a field (submit, blur, change)",
			Value:       f.Config.ValidateFieldEvent,
			Destination: &f.Config.ValidateFieldEvent,
		},
		&cli.StringFlag{
			Name:        "validate-field-error-event",
			Usage:       "event that re-validates a field with an error (submit, blur, change)",
			Value:       f.Config.ValidateFieldErrorEvent,
			Destination: &f.Config.ValidateFieldErrorEvent,
		},
		&cli.BoolFlag{
			Name:        "form-tags",
			Usage:       "wrap HTML output in a <form> element",
			Value:       f.Config.FormTags,
			Destination: &f.Config.FormTags,
		},
	}
}

// loadEngine builds the engine for the configured source. Environment
// defaults apply first, then the source's own settings, then flags the
// user passed explicitly.
func (f *Flags) loadEngine(ctx context.Context, c *cli.Command) (*form.Engine, error) {
	if err := f.Config.Validate(); err != nil {
		return nil, err
	}
	defaults, err := f.Config.FormOptions()
	if err != nil {
		return nil, err
	}
	defaults = append(defaults, form.WithLogger(logging.Component(f.Logger, "form")))

	explicit, err := f.explicitOptions(c)
	if err != nil {
		return nil, err
	}

	switch {
	case f.OpenAPI != "":
		if f.Operation == "" {
			return nil, errors.New("--operation is required with --openapi")
		}
		src, err := openapi.ParseSource(f.OpenAPI)
		if err != nil {
			return nil, err
		}
		doc, err := openapi.LoadFormFrom(ctx, src, f.Operation,
			openapi.WithTimeout(30*time.Second),
			openapi.WithLogger(logging.Component(f.Logger, "openapi")))
		if err != nil {
			return nil, err
		}
		for _, key := range doc.Skipped {
			f.Logger.Warn().Str("property", key).Msg("nested property has no form field")
		}
		return doc.NewEngine(append(defaults, explicit...)...)
	case f.FormFile != "":
		file, err := formfile.Load(f.FormFile)
		if err != nil {
			return nil, err
		}
		obj, err := file.Schema()
		if err != nil {
			return nil, err
		}
		fileOpts, err := file.Options()
		if err != nil {
			return nil, err
		}
		opts := append(append(defaults, fileOpts...), explicit...)
		return form.New(obj, opts...)
	default:
		return nil, errNoSource
	}
}

func (f *Flags) explicitOptions(c *cli.Command) ([]form.Option, error) {
	var opts []form.Option
	if c.IsSet("validate-field-event") {
		event, err := form.ParseEvent(f.Config.ValidateFieldEvent)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.WithValidateFieldEvent(event))
	}
	if c.IsSet("validate-field-error-event") {
		event, err := form.ParseEvent(f.Config.ValidateFieldErrorEvent)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.WithValidateFieldErrorEvent(event))
	}
	if c.IsSet("form-tags") {
		opts = append(opts, form.WithFormTags(f.Config.FormTags))
	}
	return opts, nil
}

// parseAssignments splits key=value pairs. Values are decoded as YAML
// scalars, so "true" and "3" arrive as a bool and an int.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", pair)
		}
		out[key] = scalarValue(raw)
	}
	return out, nil
}

func scalarValue(raw string) any {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	switch v := value.(type) {
	case bool, int, float64:
		return v
	default:
		return raw
	}
}

func writeOutput(c *cli.Command, path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	w := c.Root().Writer
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := fmt.Fprintln(w)
		return err
	}
	return nil
}
