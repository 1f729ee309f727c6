package schema

import (
	"math"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
)

// NumberField validates numeric input. Cleaned values are float64, or int64
// for Integer rules.
type NumberField struct {
	empty       bool
	allowString bool
	integer     bool
	min         *float64
	max         *float64
}

// Number returns a required numeric rule.
func Number() NumberField {
	return NumberField{}
}

// Integer returns a required rule that only accepts whole numbers.
func Integer() NumberField {
	return NumberField{integer: true}
}

// Optional accepts a missing value.
func (f NumberField) Optional() NumberField {
	f.empty = true
	return f
}

// AllowString accepts numeric text such as form input.
func (f NumberField) AllowString() NumberField {
	f.allowString = true
	return f
}

// Min rejects values below v.
func (f NumberField) Min(v float64) NumberField {
	f.min = &v
	return f
}

// Max rejects values above v.
func (f NumberField) Max(v float64) NumberField {
	f.max = &v
	return f
}

func (f NumberField) AcceptsEmpty() bool {
	return f.empty
}

func (f NumberField) Choices() []string {
	return nil
}

func (f NumberField) Kinds() []string {
	if f.integer {
		return []string{"integer", "number"}
	}
	return []string{"number"}
}

func (f NumberField) Check(raw any) Result {
	var n float64
	switch v := raw.(type) {
	case nil:
		return f.missing()
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return f.missing()
		}
		if !f.allowString {
			return fail(MessageNumber)
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fail(MessageNumber)
		}
		n = parsed
	default:
		parsed, ok := toFloat(raw)
		if !ok {
			return fail(MessageNumber)
		}
		n = parsed
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fail(MessageNumber)
	}
	if f.integer {
		if n != math.Trunc(n) {
			return fail(MessageInteger)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return fail(MessageRange)
		}
		return check(n, int64(n), f.validators()...)
	}
	return check(n, n, f.validators()...)
}

func (f NumberField) validators() []criterio.Validator[float64] {
	var rules []criterio.Validator[float64]
	if f.min != nil {
		rules = append(rules, withMessage(criterio.Min(*f.min), "Must be at least "+formatFloat(*f.min)))
	}
	if f.max != nil {
		rules = append(rules, withMessage(criterio.Max(*f.max), "Must be at most "+formatFloat(*f.max)))
	}
	return rules
}

func (f NumberField) missing() Result {
	if f.empty {
		return Result{Value: nil}
	}
	return fail(MessageRequired)
}
