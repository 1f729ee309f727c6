// Package commands wires the formstate command line interface.
package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/logging"
)

// NewApp builds the root command. cfg supplies the flag defaults.
func NewApp(cfg config.Config, version string) *cli.Command {
	flags := &Flags{Config: cfg}

	app := &cli.Command{
		Name:      "formstate",
		Usage:     "Render, fill and validate declarative forms",
		UsageText: "formstate [global options] command [command options]",
		Description: `formstate loads a form from a YAML form file (--form) or from the request
body of an OpenAPI operation (--openapi, --operation).

Run 'formstate render' for HTML or JSON output, 'formstate fill' to fill the
form in the terminal and 'formstate validate' to check a submission.`,
		Version: version,
		Flags:   flags.globalFlags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := logging.New(flags.Config.LogLevel, c.Root().ErrWriter)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			flags.Logger = logger
			return ctx, nil
		},
	}

	app = NewRenderCmd(flags).Register(app)
	app = NewFillCmd(flags).Register(app)
	app = NewValidateCmd(flags).Register(app)
	app = NewDescribeCmd(flags).Register(app)

	return app
}
