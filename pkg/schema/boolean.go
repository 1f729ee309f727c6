package schema

import "strings"

// BooleanField validates a checkbox style flag. A missing value is false.
type BooleanField struct {
	allowString bool
}

// Boolean returns a flag rule.
func Boolean() BooleanField {
	return BooleanField{}
}

// AllowString accepts textual flags such as "true", "on" or "no".
func (f BooleanField) AllowString() BooleanField {
	f.allowString = true
	return f
}

func (f BooleanField) AcceptsEmpty() bool {
	return false
}

func (f BooleanField) Choices() []string {
	return nil
}

func (f BooleanField) Kinds() []string {
	return []string{"boolean"}
}

func (f BooleanField) Check(raw any) Result {
	switch v := raw.(type) {
	case nil:
		return Result{Value: false}
	case bool:
		return Result{Value: v}
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		if text == "" {
			return Result{Value: false}
		}
		if !f.allowString {
			return fail(MessageBoolean)
		}
		switch text {
		case "true", "t", "1", "on", "yes", "y":
			return Result{Value: true}
		case "false", "f", "0", "off", "no", "n":
			return Result{Value: false}
		}
	}
	return fail(MessageBoolean)
}
