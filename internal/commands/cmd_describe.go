package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formstate/pkg/renderers/jsonview"
)

type DescribeCmd struct {
	flags *Flags

	output string
}

// NewDescribeCmd creates a new describe command.
func NewDescribeCmd(flags *Flags) *DescribeCmd {
	return &DescribeCmd{flags: flags}
}

// Register adds the describe command to the application.
func (cmd *DescribeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "describe",
		Usage: "Print the JSON Schema of the json renderer's output",
		Flags: []cli.Flag{
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

func (cmd *DescribeCmd) run(_ context.Context, c *cli.Command) error {
	payload, err := json.MarshalIndent(jsonview.DescriptionSchema(), "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(c, cmd.output, payload)
}
