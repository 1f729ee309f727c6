// Package config loads the CLI defaults from FORMSTATE_* environment
// variables. Command line flags override every value.
package config

import (
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Prompt drivers understood by the fill command.
const (
	DriverSurvey = "survey"
	DriverHuh    = "huh"
)

type Config struct {
	// ENV: FORMSTATE_VALIDATE_FIELD_EVENT
	ValidateFieldEvent string `env:"FORMSTATE_VALIDATE_FIELD_EVENT,default=submit"`
	// ENV: FORMSTATE_VALIDATE_FIELD_ERROR_EVENT
	ValidateFieldErrorEvent string `env:"FORMSTATE_VALIDATE_FIELD_ERROR_EVENT,default=change"`
	// ENV: FORMSTATE_FORM_TAGS
	FormTags bool `env:"FORMSTATE_FORM_TAGS,default=true,strict"`
	// ENV: FORMSTATE_LOG_LEVEL
	LogLevel string `env:"FORMSTATE_LOG_LEVEL,default=warn"`
	// ENV: FORMSTATE_DRIVER
	Driver string `env:"FORMSTATE_DRIVER,default=survey"`
}

// Load decodes the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports unknown events, drivers and log levels.
func (c Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	switch strings.ToLower(c.Driver) {
	case DriverSurvey, DriverHuh:
	default:
		return fmt.Errorf("config: unknown prompt driver %q", c.Driver)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	return nil
}

// Policy converts the configured event names.
func (c Config) Policy() (form.Policy, error) {
	fieldEvent, err := form.ParseEvent(c.ValidateFieldEvent)
	if err != nil {
		return form.Policy{}, fmt.Errorf("config: validate field event: %w", err)
	}
	errorEvent, err := form.ParseEvent(c.ValidateFieldErrorEvent)
	if err != nil {
		return form.Policy{}, fmt.Errorf("config: validate field error event: %w", err)
	}
	return form.Policy{ValidateFieldEvent: fieldEvent, ValidateFieldErrorEvent: errorEvent}, nil
}

// FormOptions returns the engine options the configuration implies.
func (c Config) FormOptions() ([]form.Option, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}
	return []form.Option{
		form.WithPolicy(policy),
		form.WithFormTags(c.FormTags),
	}, nil
}
