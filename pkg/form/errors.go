package form

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"
)

var (
	// ErrUnknownField is returned when an operation names a key the schema
	// does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrInvalidEvent is returned for event names outside submit, blur and
	// change.
	ErrInvalidEvent = errors.New("form: invalid event")
	// ErrNilSchema is returned by New when no schema is supplied.
	ErrNilSchema = errors.New("form: schema is nil")
	// ErrDetachedBinding is returned by Report on a zero Binding.
	ErrDetachedBinding = errors.New("form: binding is not attached to an engine")
)

// ValidationError is the whole-form validation failure returned by
// ValidateAll when propagation is requested. Fields holds one message per
// schema key; Form holds messages that could not be attributed to a key.
type ValidationError struct {
	Fields map[string]string
	Form   []string
	Err    error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(e.Form))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	parts = append(parts, e.Form...)
	if len(parts) == 0 {
		return "form: validation failed"
	}
	return "form: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FieldMessenger lets schemas that do not report criterio.FieldErrors
// expose their per-path messages.
type FieldMessenger interface {
	FieldMessages() map[string][]string
}

type pathMessage struct {
	path    string
	message string
}

// extractMessages pulls per-path messages out of a schema failure. The
// second result is false when err is not a recognized validation failure.
func extractMessages(err error) ([]pathMessage, bool) {
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		out := make([]pathMessage, 0, len(fieldErrs))
		for _, entry := range fieldErrs {
			if entry.Err == nil {
				continue
			}
			out = append(out, pathMessage{path: entry.Field, message: entry.Err.Error()})
		}
		return out, true
	}

	var messenger FieldMessenger
	if errors.As(err, &messenger) {
		payload := messenger.FieldMessages()
		paths := make([]string, 0, len(payload))
		for path := range payload {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		var out []pathMessage
		for _, path := range paths {
			for _, message := range payload[path] {
				out = append(out, pathMessage{path: path, message: message})
			}
		}
		return out, true
	}

	return nil, false
}

// errorMapping splits messages into field-level and form-level groups keyed
// by schema keys.
type errorMapping struct {
	Fields map[string][]string
	Form   []string
}

// mapMessages attributes each message to the schema key its path points at.
// Paths are accepted in dotted, bracketed or JSON pointer form; unknown paths
// become form-level messages so nothing is lost.
func mapMessages(keys []string, messages []pathMessage) errorMapping {
	mapping := errorMapping{Fields: make(map[string][]string)}

	known := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		known[key] = struct{}{}
	}

	for _, entry := range messages {
		message := strings.TrimSpace(entry.message)
		if message == "" {
			continue
		}
		key, formLevel := mapErrorPath(entry.path, known)
		if formLevel {
			mapping.Form = append(mapping.Form, message)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], message)
	}

	for key, list := range mapping.Fields {
		mapping.Fields[key] = normalizeMessages(list)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	if _, ok := known[trimmed]; ok {
		return trimmed, false
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := ""
	for _, variant := range buildSegmentVariants(segments) {
		if path := longestMatchingPath(variant, known); len(path) > len(best) {
			best = path
		}
	}
	if best == "" {
		return "", true
	}
	return best, false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.Trim(strings.TrimSpace(part), `"'`)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)

	appendVariant := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	appendVariant(segments)
	noWrappers := dropWrapperSegments(segments)
	appendVariant(noWrappers)
	appendVariant(stripNumericSegments(segments))
	appendVariant(stripNumericSegments(noWrappers))

	return variants
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
