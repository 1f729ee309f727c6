package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when the form is still invalid after the
	// configured number of correction rounds.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
	// ErrFormInvalid is returned when only form-level errors remain, which no
	// field prompt can correct.
	ErrFormInvalid = errors.New("tui: form is invalid")
)
