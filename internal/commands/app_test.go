package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

var contactForm = filepath.Join("testdata", "contact.yaml")

func testConfig() config.Config {
	return config.Config{
		ValidateFieldEvent:      "submit",
		ValidateFieldErrorEvent: "change",
		FormTags:                true,
		LogLevel:                "warn",
		Driver:                  config.DriverSurvey,
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, app *cli.Command, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	err := app.Run(context.Background(), append([]string{"formstate"}, args...))
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRender_JSON(t *testing.T) {
	res := run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "render", "-r", "json", "--set", "name=A", "--validate")
	require.NoError(t, res.err)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, "contact", doc.ID)
	require.Len(t, doc.Fields, 3)
	assert.Equal(t, "Your name", doc.Fields[0].Label)
	assert.Equal(t, "A", doc.Fields[0].Value)
	assert.Equal(t, "Must be at least 2 characters", doc.Fields[0].Error)
	assert.Equal(t, "Email (optional)", doc.Fields[1].Label)
	assert.Equal(t, "checkbox", doc.Fields[2].Widget)
}

func TestRender_HTML(t *testing.T) {
	res := run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "render", "--submit-label", "Send", "--hidden", "_csrf=abc")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, `<form id="contact" novalidate>`)
	assert.Contains(t, res.stdout, `<input type="hidden" name="_csrf" value="abc">`)
	assert.Contains(t, res.stdout, `>Your name</label>`)
	assert.Contains(t, res.stdout, `<button type="submit" class="btn btn-primary">Send</button>`)

	res = run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "--form-tags=false", "render", "--field", "name")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "<form")
	assert.NotContains(t, res.stdout, `id="email"`)
}

func TestRender_Theme(t *testing.T) {
	themeFile := filepath.Join("testdata", "theme.yaml")

	res := run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "render", "--theme", themeFile, "--field", "name")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `<link rel="stylesheet" href="/themes/acme/theme.css">`)
	assert.Contains(t, res.stdout, `<form id="contact" data-theme="acme" style="--brand: #123456" novalidate>`)
	assert.Contains(t, res.stdout, `<input type="text" class="acme-input" id="name"`)

	res = run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "render", "--theme", themeFile, "--theme-variant", "dark", "--field", "name")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `<link rel="stylesheet" href="/themes/acme/theme.dark.css">`)
	assert.Contains(t, res.stdout, `data-theme-variant="dark" style="--brand: #000000"`)

	res = run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "render", "--theme", themeFile, "--theme-variant", "sepia")
	assert.ErrorContains(t, res.err, `no variant "sepia"`)

	res = run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "render", "--theme-variant", "dark")
	assert.ErrorContains(t, res.err, "requires --theme")
}

func TestRender_Errors(t *testing.T) {
	res := run(t, NewApp(testConfig(), "test"), "render")
	assert.True(t, errors.Is(res.err, errNoSource), "got %v", res.err)

	res = run(t, NewApp(testConfig(), "test"), "--form", contactForm, "render", "-r", "pdf")
	assert.ErrorIs(t, res.err, render.ErrRendererNotFound)

	res = run(t, NewApp(testConfig(), "test"), "--form", contactForm, "render", "--set", "missing=1")
	assert.Error(t, res.err)
}

func TestValidate(t *testing.T) {
	res := run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "validate", "--set", "name=Ada", "--set", "subscribe=true")
	require.NoError(t, res.err)

	var cleaned map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &cleaned))
	assert.Equal(t, map[string]any{"name": "Ada", "email": "", "subscribe": true}, cleaned)

	res = run(t, NewApp(testConfig(), "test"),
		"--form", contactForm, "validate", "--set", "name=A", "--set", "email=nope")
	var exitErr cli.ExitCoder
	require.True(t, errors.As(res.err, &exitErr), "got %v", res.err)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Equal(t, "email: Must be a valid email address\nname: Must be at least 2 characters\n", res.stderr)
}

func TestDescribe(t *testing.T) {
	res := run(t, NewApp(testConfig(), "test"), "describe")
	require.NoError(t, res.err)
	assert.True(t, strings.Contains(res.stdout, `"fields"`), res.stdout)
}

type scriptedDriver struct {
	inputs []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return true, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return 0, nil
}

func (d *scriptedDriver) Info(context.Context, string) error {
	return nil
}

func TestFill(t *testing.T) {
	flags := &Flags{Config: testConfig(), Logger: zerolog.Nop()}
	fill := NewFillCmd(flags)
	driver := &scriptedDriver{inputs: []string{"A", "ada@example.com", "Ada"}}
	fill.newDriver = func(name string, _ bool) (tui.PromptDriver, error) {
		assert.Equal(t, config.DriverHuh, name)
		return driver, nil
	}
	app := fill.Register(&cli.Command{Name: "formstate", Flags: flags.globalFlags()})

	res := run(t, app, "--form", contactForm, "fill", "--driver", "huh", "--format", "pretty")
	require.NoError(t, res.err)
	assert.Equal(t, "email=ada@example.com\nname=Ada\nsubscribe=true\n", res.stdout)
	assert.Empty(t, driver.inputs)
}

func TestPromptDriver(t *testing.T) {
	_, err := promptDriver("readline", false)
	assert.Error(t, err)

	driver, err := promptDriver("HUH", true)
	require.NoError(t, err)
	assert.NotNil(t, driver)
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a=1", "b=true", "c=hello", "d=", "e=[1]", "f=2024-01-02"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": 1,
		"b": true,
		"c": "hello",
		"d": "",
		"e": "[1]",
		"f": "2024-01-02",
	}, got)

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
}

func TestRender_OpenAPI(t *testing.T) {
	spec := filepath.Join("..", "..", "pkg", "openapi", "testdata", "signup.yaml")
	res := run(t, NewApp(testConfig(), "test"),
		"--openapi", spec, "--operation", "createSignup", "render", "-r", "json")
	require.NoError(t, res.err)

	var doc render.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, "createSignup", doc.ID)
	require.NotEmpty(t, doc.Fields)
	assert.Equal(t, "Full name", doc.Fields[0].Label)

	res = run(t, NewApp(testConfig(), "test"), "--openapi", spec, "render")
	assert.Error(t, res.err)
}
