package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

type FillCmd struct {
	flags *Flags

	driver      string
	accessible  bool
	format      string
	maxAttempts int
	fields      []string
	output      string

	// newDriver is replaced in tests.
	newDriver func(name string, accessible bool) (tui.PromptDriver, error)
}

// NewFillCmd creates a new fill command.
func NewFillCmd(flags *Flags) *FillCmd {
	return &FillCmd{flags: flags, newDriver: promptDriver}
}

// Register adds the fill command to the application.
func (cmd *FillCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fill",
		Usage:     "Fill a form interactively in the terminal",
		UsageText: "formstate --form signup.yaml fill [options]",
		Description: `Prompts for every enabled field, then re-prompts the fields that fail
validation. The cleaned values are printed once the form is valid.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "driver",
				Usage:       "prompt driver (survey, huh)",
				Value:       cmd.flags.Config.Driver,
				Destination: &cmd.driver,
			},
			&cli.BoolFlag{
				Name:        "accessible",
				Usage:       "use the screen reader friendly mode of the huh driver",
				Destination: &cmd.accessible,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (json, form, pretty)",
				Value:       string(tui.OutputFormatJSON),
				Destination: &cmd.format,
			},
			&cli.IntFlag{
				Name:        "max-attempts",
				Usage:       "correction rounds before giving up",
				Value:       tui.DefaultMaxAttempts,
				Destination: &cmd.maxAttempts,
			},
			&cli.StringSliceFlag{
				Name:        "field",
				Usage:       "prompt only these fields, in order (repeatable)",
				Destination: &cmd.fields,
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

func (cmd *FillCmd) run(ctx context.Context, c *cli.Command) error {
	format, ok := tui.ParseOutputFormat(cmd.format)
	if !ok {
		return fmt.Errorf("unknown output format %q", cmd.format)
	}
	driver, err := cmd.newDriver(cmd.driver, cmd.accessible)
	if err != nil {
		return err
	}

	engine, err := cmd.flags.loadEngine(ctx, c)
	if err != nil {
		return err
	}

	renderer := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(format),
		tui.WithMaxAttempts(cmd.maxAttempts),
		tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
		tui.WithLogger(logging.Component(cmd.flags.Logger, "tui")),
	)
	out, err := renderer.Render(ctx, engine, render.Options{Fields: cmd.fields})
	if err != nil {
		return err
	}
	return writeOutput(c, cmd.output, out)
}

func promptDriver(name string, accessible bool) (tui.PromptDriver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.DriverSurvey, "":
		return tui.NewSurveyDriver(), nil
	case config.DriverHuh:
		return tui.NewHuhDriver(accessible), nil
	default:
		return nil, fmt.Errorf("unknown prompt driver %q", name)
	}
}
