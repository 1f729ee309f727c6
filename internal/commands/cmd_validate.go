package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type ValidateCmd struct {
	flags *Flags

	valuesPath string
	values     []string
}

// NewValidateCmd creates a new validate command.
func NewValidateCmd(flags *Flags) *ValidateCmd {
	return &ValidateCmd{flags: flags}
}

// Register adds the validate command to the application.
func (cmd *ValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "validate",
		Usage:     "Validate submitted values against a form",
		UsageText: "formstate --form signup.yaml validate --values submission.json",
		Description: `Submits the values (a JSON or YAML mapping, "-" for stdin) and prints the
cleaned result. Field errors are printed one per line and the command exits
with status 1.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "values",
				Usage:       "JSON or YAML file with the submitted values",
				Destination: &cmd.valuesPath,
			},
			&cli.StringSliceFlag{
				Name:        "set",
				Usage:       "submitted value as key=value (repeatable, applied after --values)",
				Destination: &cmd.values,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ValidateCmd) run(ctx context.Context, c *cli.Command) error {
	engine, err := cmd.flags.loadEngine(ctx, c)
	if err != nil {
		return err
	}

	values, err := cmd.readValues(c)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(values) {
		if err := engine.SetValue(key, values[key]); err != nil {
			return err
		}
	}

	var (
		cleaned     map[string]any
		fieldErrors map[string]string
	)
	err = engine.Submit(
		func(values map[string]any) { cleaned = values },
		func(errs map[string]string) { fieldErrors = errs },
	)
	if err != nil {
		return err
	}

	if cleaned != nil {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(cleaned)
	}

	w := c.Root().ErrWriter
	for _, message := range engine.FormErrors() {
		fmt.Fprintf(w, "form: %s\n", message)
	}
	for _, key := range sortedKeys(fieldErrors) {
		fmt.Fprintf(w, "%s: %s\n", key, fieldErrors[key])
	}
	return cli.Exit("", 1)
}

func (cmd *ValidateCmd) readValues(c *cli.Command) (map[string]any, error) {
	values := map[string]any{}
	if cmd.valuesPath != "" {
		var (
			data []byte
			err  error
		)
		if cmd.valuesPath == "-" {
			data, err = io.ReadAll(c.Root().Reader)
		} else {
			data, err = os.ReadFile(cmd.valuesPath)
		}
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("decode values: %w", err)
		}
		if values == nil {
			values = map[string]any{}
		}
	}

	assigned, err := parseAssignments(cmd.values)
	if err != nil {
		return nil, err
	}
	for key, value := range assigned {
		values[key] = value
	}
	return values, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
