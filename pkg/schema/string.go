package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

// String formats understood by StringField.
const (
	FormatEmail    = "email"
	FormatPassword = "password"
	FormatDate     = "date"
	FormatURI      = "uri"
	FormatTextarea = "textarea"
)

// StringField validates text. Builder methods return a modified copy, so a
// rule can be shared between objects safely.
type StringField struct {
	empty     bool
	minLength int
	maxLength int
	pattern   *regexp.Regexp
	options   []string
	format    string
}

// String returns a required text rule.
func String() StringField {
	return StringField{}
}

// Email returns a required text rule that only accepts email addresses.
func Email() StringField {
	return StringField{format: FormatEmail}
}

// Optional accepts the empty string.
func (f StringField) Optional() StringField {
	f.empty = true
	return f
}

// MinLength rejects values shorter than n runes.
func (f StringField) MinLength(n int) StringField {
	f.minLength = n
	return f
}

// MaxLength rejects values longer than n runes.
func (f StringField) MaxLength(n int) StringField {
	f.maxLength = n
	return f
}

// Pattern rejects values that do not match expr. It panics when expr does
// not compile.
func (f StringField) Pattern(expr string) StringField {
	f.pattern = regexp.MustCompile(expr)
	return f
}

// OneOf restricts the rule to the given values, which become its intrinsic
// choices.
func (f StringField) OneOf(values ...string) StringField {
	f.options = append([]string(nil), values...)
	return f
}

// Format tags the value with a format such as FormatDate; email, date and
// uri formats are also enforced.
func (f StringField) Format(format string) StringField {
	f.format = format
	return f
}

func (f StringField) AcceptsEmpty() bool {
	return f.empty
}

func (f StringField) Choices() []string {
	if f.options == nil {
		return nil
	}
	return append([]string(nil), f.options...)
}

func (f StringField) Kinds() []string {
	if f.format != "" {
		return []string{f.format, "string"}
	}
	return []string{"string"}
}

func (f StringField) Check(raw any) Result {
	text, ok := toText(raw)
	if !ok {
		return fail(MessageText)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		if f.empty {
			return Result{Value: ""}
		}
		return fail(MessageRequired)
	}
	return check(text, text, f.validators()...)
}

func (f StringField) validators() []criterio.Validator[string] {
	var rules []criterio.Validator[string]
	if f.minLength > 0 {
		rules = append(rules, withMessage(criterio.StrMin(f.minLength),
			fmt.Sprintf("Must be at least %d characters", f.minLength)))
	}
	if f.maxLength > 0 {
		rules = append(rules, withMessage(criterio.StrMax(f.maxLength),
			fmt.Sprintf("Must be at most %d characters", f.maxLength)))
	}
	if f.pattern != nil {
		rules = append(rules, withMessage(criterio.StrMatches(f.pattern), MessagePattern))
	}
	if len(f.options) > 0 {
		rules = append(rules, withMessage(criterio.StrOneOf(f.options...),
			"Must be one of: "+strings.Join(f.options, ", ")))
	}

	switch f.format {
	case FormatEmail:
		rules = append(rules, withMessage(criterio.Validator[string](criterio.StrEmail), MessageEmail))
	case FormatDate:
		rules = append(rules, withMessage(criterio.Validator[string](isDate), MessageDate))
	case FormatURI:
		rules = append(rules, withMessage(criterio.Validator[string](criterio.StrURL), MessageURI))
	}
	return rules
}

func isDate(text string) error {
	_, err := time.Parse(time.DateOnly, text)
	return err
}

func toText(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		// YAML decodes unquoted dates and timestamps into time.Time.
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly), true
		}
		return v.Format(time.RFC3339), true
	}
	if n, ok := toFloat(raw); ok {
		return formatFloat(n), true
	}
	return "", false
}
