// Package schema holds the validation rules a form is built from. A rule
// checks a single raw value; an Object checks a whole value map and reports
// failures as criterio field errors keyed by property.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/hay-kot/criterio"
)

// Messages reported by the built-in rules.
const (
	MessageRequired = "This field is required"
	MessageNumber   = "Must be a number"
	MessageInteger  = "Must be a whole number"
	MessageBoolean  = "Must be true or false"
	MessageText     = "Must be text"
	MessageEmail    = "Must be a valid email address"
	MessageDate     = "Must be a date (YYYY-MM-DD)"
	MessageURI      = "Must be a valid URL"
	MessagePattern  = "Has an invalid format"
	MessageRange    = "Is out of range"
)

// Result is the outcome of checking one raw value. A non-empty Error marks
// the value as rejected; otherwise Value holds the cleaned value.
type Result struct {
	Value any
	Error string
}

// Valid reports whether the value was accepted.
func (r Result) Valid() bool {
	return r.Error == ""
}

// Field is a single-value validation rule.
type Field interface {
	// Check validates raw and returns the cleaned value or an error message.
	Check(raw any) Result
	// AcceptsEmpty reports whether an empty value is valid.
	AcceptsEmpty() bool
	// Choices returns the rule's intrinsic allowed values, nil when it has none.
	Choices() []string
	// Kinds lists what the rule validates, most specific first
	// (for example "email", "string").
	Kinds() []string
}

// HasKind reports whether rule lists kind among its Kinds.
func HasKind(rule Field, kind string) bool {
	if rule == nil {
		return false
	}
	for _, candidate := range rule.Kinds() {
		if candidate == kind {
			return true
		}
	}
	return false
}

// Kind returns the most specific kind of rule.
func Kind(rule Field) string {
	if rule == nil {
		return ""
	}
	if kinds := rule.Kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return ""
}

// withMessage reports msg in place of the validator's own wording.
func withMessage[T any](v criterio.Validator[T], msg string) criterio.Validator[T] {
	return func(val T) error {
		if v(val) != nil {
			return errors.New(msg)
		}
		return nil
	}
}

// check runs validators until the first failure. On success the result
// carries cleaned.
func check[T any](val T, cleaned any, validators ...criterio.Validator[T]) Result {
	if err := criterio.Run("", val, validators...); err != nil {
		return fail(err.Error())
	}
	return Result{Value: cleaned}
}

func fail(msg string) Result {
	return Result{Error: msg}
}

func failf(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
