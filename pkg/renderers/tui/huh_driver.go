package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
)

type huhDriver struct {
	out        io.Writer
	accessible bool
}

// NewHuhDriver returns a driver backed by charmbracelet/huh. Accessible mode
// swaps the interactive widgets for plain line prompts.
func NewHuhDriver(accessible bool) PromptDriver {
	return &huhDriver{out: os.Stdout, accessible: accessible}
}

func (d *huhDriver) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(d.accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func (d *huhDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	out := cfg.Default
	field := huh.NewInput().
		Title(cfg.Message).
		Description(cfg.Help).
		Placeholder(cfg.Placeholder).
		Value(&out)
	if err := d.run(ctx, field); err != nil {
		return "", err
	}
	return out, nil
}

func (d *huhDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	field := huh.NewInput().
		Title(cfg.Message).
		Description(cfg.Help).
		EchoMode(huh.EchoModePassword).
		Value(&out)
	if err := d.run(ctx, field); err != nil {
		return "", err
	}
	return out, nil
}

func (d *huhDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	out := cfg.Default
	field := huh.NewConfirm().
		Title(cfg.Message).
		Description(cfg.Help).
		Value(&out)
	if err := d.run(ctx, field); err != nil {
		return false, err
	}
	return out, nil
}

func (d *huhDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	options := make([]huh.Option[int], 0, len(cfg.Options))
	for idx, label := range cfg.Options {
		options = append(options, huh.NewOption(label, idx))
	}
	out := cfg.DefaultIndex
	field := huh.NewSelect[int]().
		Title(cfg.Message).
		Description(cfg.Help).
		Options(options...).
		Value(&out)
	if cfg.PageSize > 0 {
		field = field.Height(cfg.PageSize)
	}
	if err := d.run(ctx, field); err != nil {
		return 0, err
	}
	return out, nil
}

func (d *huhDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
