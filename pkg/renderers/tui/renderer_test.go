package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/choices"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	passwords    []string
	infoMessages []string
	messages     []string
	selects      []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRender_FillsAndCorrects(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"A", "", "42", "Ada"},
		selectIdx: []int{2},
		confirm:   []bool{true},
	}
	engine := testsupport.NewEngine(t, testsupport.ProfileSchema())

	out, err := New(WithPromptDriver(driver)).Render(context.Background(), engine, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{"age":42,"color":"blue","email":"","name":"Ada","subscribe":true}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	wantMessages := []string{"Name", "Email address (optional)", "Color", "Age (optional)", "Subscribe", "Name"}
	if diff := cmp.Diff(wantMessages, driver.messages); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Name: Must be at least 2 characters"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Warm / red", "Warm / orange", "Cool / Blue"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}
	if engine.Status("name") != form.StatusTouched {
		t.Fatalf("expected name to be touched after the session")
	}
}

func TestRender_TooManyAttempts(t *testing.T) {
	obj := schema.MustObject(schema.Prop("code", schema.String().Pattern(`^[A-Z]{3}$`)))
	driver := &stubDriver{inputs: []string{"a", "b", "c"}}
	engine := testsupport.NewEngine(t, obj)

	_, err := New(WithPromptDriver(driver), WithMaxAttempts(1)).Render(context.Background(), engine, render.Options{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected two prompts, got %d", driver.inputPos)
	}
}

func TestRender_FormLevelErrors(t *testing.T) {
	obj := schema.MustObject(schema.Prop("name", schema.String())).
		WithCustom(func(map[string]any) error {
			return schema.FieldError("__all__", "Registrations are closed")
		})
	driver := &stubDriver{inputs: []string{"Ada"}}
	engine := testsupport.NewEngine(t, obj)

	_, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "})).Render(context.Background(), engine, render.Options{})
	if !errors.Is(err, ErrFormInvalid) {
		t.Fatalf("expected ErrFormInvalid, got %v", err)
	}
	if diff := cmp.Diff([]string{"! Registrations are closed"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SkipsDisabledAndOffersNone(t *testing.T) {
	obj := schema.MustObject(
		schema.Prop("size", field.Must(field.Declare(field.Metadata{
			SelectFrom: choices.Values("s", "m"),
		})(schema.String().Optional()))),
		schema.Prop("token", field.Must(field.Declare(field.Metadata{
			Enabled: field.Enable(false),
		})(schema.String().Optional()))),
		schema.Prop("secret", schema.String().Format(schema.FormatPassword)),
	)
	driver := &stubDriver{
		selectIdx: []int{0},
		passwords: []string{"hunter2"},
	}
	engine := testsupport.NewEngine(t, obj)

	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded)).
		Render(context.Background(), engine, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("secret=hunter2&size=&token=", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{NoneOption, "s", "m"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Size (optional)", "Secret"}, driver.messages); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Errors(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}))
	if _, err := r.Render(context.Background(), nil, render.Options{}); !errors.Is(err, render.ErrNilForm) {
		t.Fatalf("expected ErrNilForm, got %v", err)
	}

	engine := testsupport.NewEngine(t, testsupport.ProfileSchema())
	if _, err := r.Render(context.Background(), engine, render.Options{}); err == nil {
		t.Fatalf("expected driver error to propagate")
	}
}

func TestSerialize(t *testing.T) {
	values := map[string]any{"b": 2.5, "a": "x", "c": nil}

	pretty, err := New(WithOutputFormat(OutputFormatPrettyText)).serialize(values)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if diff := cmp.Diff("a=x\nb=2.5\nc=\n", string(pretty)); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}

	if got := New(WithOutputFormat(OutputFormatPrettyText)).ContentType(); got != "text/plain" {
		t.Fatalf("unexpected content type %q", got)
	}
	if _, ok := ParseOutputFormat("xml"); ok {
		t.Fatalf("expected xml to be rejected")
	}
}

func TestPlainText(t *testing.T) {
	if got := plainText(`We <b>never</b> share it.`); got != "We never share it." {
		t.Fatalf("unexpected plain text %q", got)
	}
}
