package html

import (
	"maps"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ClassTokenPrefix marks theme tokens that replace a chrome class, for
// example "class.input" for text controls.
const ClassTokenPrefix = "class."

func defaultClasses() map[string]string {
	return map[string]string{
		"group":           "mb-3",
		"row":             "row mb-3",
		"label":           "form-label",
		"horizontalLabel": "col-form-label",
		"input":           "form-control",
		"select":          "form-select",
		"check":           "form-check mb-3",
		"checkInput":      "form-check-input",
		"checkLabel":      "form-check-label",
		"invalid":         "is-invalid",
		"feedback":        "invalid-feedback",
		"help":            "form-text",
		"submit":          "btn btn-primary",
		"alert":           "alert alert-danger",
	}
}

func resolveClasses(cfg *theme.RendererConfig) map[string]string {
	classes := defaultClasses()
	if cfg == nil {
		return classes
	}
	for key, value := range cfg.Tokens {
		name, ok := strings.CutPrefix(key, ClassTokenPrefix)
		if !ok || name == "" {
			continue
		}
		classes[name] = strings.TrimSpace(value)
	}
	return classes
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		parts = append(parts, name+": "+strings.TrimSpace(vars[key]))
	}
	return strings.Join(parts, "; ")
}

func copyTheme(cfg *theme.RendererConfig) *theme.RendererConfig {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	clone.Tokens = maps.Clone(cfg.Tokens)
	clone.CSSVars = maps.Clone(cfg.CSSVars)
	clone.Partials = maps.Clone(cfg.Partials)
	return &clone
}
