package choices

import (
	"errors"
	"fmt"
)

// ErrInvalidChoices is matched by every InvalidChoicesError.
var ErrInvalidChoices = errors.New("choices: invalid choices")

// InvalidChoicesError reports input that cannot be normalized.
type InvalidChoicesError struct {
	Group  string
	Shape  Shape
	Reason string
}

func (e *InvalidChoicesError) Error() string {
	if e == nil {
		return ErrInvalidChoices.Error()
	}
	msg := ErrInvalidChoices.Error()
	if e.Group != "" {
		msg = fmt.Sprintf("%s in group %q", msg, e.Group)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports ErrInvalidChoices as the sentinel for this error.
func (e *InvalidChoicesError) Is(target error) bool {
	return target == ErrInvalidChoices
}
