// Package widgets picks the input widget a renderer should use for a
// binding.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText     = "text"
	WidgetSelect   = "select"
	WidgetNumber   = "number"
	WidgetEmail    = "email"
	WidgetPassword = "password"
	WidgetDate     = "date"
	WidgetCheckbox = "checkbox"
	WidgetURL      = "url"
	WidgetTextarea = "textarea"
)

// Matcher decides whether a widget should handle the supplied binding.
type Matcher func(binding form.Binding) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for bindings. Matchers are evaluated by priority
// (ties fall back to registration order); when none match, the rule's kinds
// are looked up most specific first, and WidgetText is the final fallback.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
	kinds map[string]string
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{kinds: make(map[string]string)}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// RegisterKind maps a rule kind (see schema.Field.Kinds) to a widget.
func (r *Registry) RegisterKind(kind, widget string) {
	if r == nil {
		return
	}
	kind = strings.TrimSpace(kind)
	widget = strings.TrimSpace(widget)
	if kind == "" || widget == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.kinds == nil {
		r.kinds = make(map[string]string)
	}
	r.kinds[kind] = widget
}

// Resolve returns the widget name for a binding.
func (r *Registry) Resolve(binding form.Binding) string {
	if r == nil {
		return WidgetText
	}

	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	kinds := make(map[string]string, len(r.kinds))
	for kind, widget := range r.kinds {
		kinds[kind] = widget
	}
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(binding) {
			return entry.name
		}
	}

	if binding.Rule != nil {
		for _, kind := range binding.Rule.Kinds() {
			if widget, ok := kinds[kind]; ok {
				return widget
			}
		}
	}
	return WidgetText
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelect, 100, func(binding form.Binding) bool {
		return binding.Choices != nil
	})

	r.kinds["number"] = WidgetNumber
	r.kinds["integer"] = WidgetNumber
	r.kinds[schema.FormatEmail] = WidgetEmail
	r.kinds[schema.FormatPassword] = WidgetPassword
	r.kinds[schema.FormatDate] = WidgetDate
	r.kinds["boolean"] = WidgetCheckbox
	r.kinds[schema.FormatURI] = WidgetURL
	r.kinds[schema.FormatTextarea] = WidgetTextarea
}
