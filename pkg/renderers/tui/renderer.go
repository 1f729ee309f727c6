package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/widgets"
)

// Name identifies the renderer in a render.Registry.
const Name = "tui"

// NoneOption labels the empty choice offered for optional selects.
const NoneOption = "(none)"

// Renderer implements render.Renderer for terminal sessions. It fills the
// form by prompting each enabled field, reporting answers to the engine, and
// re-prompts fields the engine rejects until the form validates. The output
// is the serialized cleaned values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	widgets           *widgets.Registry
	logger            zerolog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       NewSurveyDriver(),
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
		widgets:      widgets.NewRegistry(),
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs an interactive session against f. Answers are reported with
// EventBlur on the first pass and EventChange on corrections.
func (r *Renderer) Render(ctx context.Context, f render.Form, options render.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, render.ErrNilForm
	}

	bindings, err := f.Bindings(options.Fields...)
	if err != nil {
		return nil, fmt.Errorf("tui: bind fields: %w", err)
	}
	for _, binding := range bindings {
		if !binding.Enabled {
			continue
		}
		if err := r.promptBinding(ctx, binding, form.EventBlur); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		cleaned, err := f.ValidateAll(false)
		if err != nil {
			return nil, fmt.Errorf("tui: validate: %w", err)
		}
		if cleaned != nil {
			return r.finish(cleaned)
		}

		bindings, err = f.Bindings(options.Fields...)
		if err != nil {
			return nil, fmt.Errorf("tui: bind fields: %w", err)
		}
		invalid, stuck := partitionInvalid(bindings)
		if len(invalid) == 0 {
			return nil, r.uncorrectable(ctx, f.FormErrors(), stuck)
		}
		if attempt >= r.maxAttempts {
			return nil, fmt.Errorf("%w: %d field(s) still invalid", ErrTooManyAttempts, len(invalid))
		}

		r.logger.Debug().
			Int("attempt", attempt+1).
			Int("invalid_fields", len(invalid)).
			Msg("re-prompting invalid fields")

		for _, binding := range invalid {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+binding.Label+": "+binding.Error); err != nil {
				return nil, err
			}
			if err := r.promptBinding(ctx, binding, form.EventChange); err != nil {
				return nil, err
			}
		}
	}
}

// partitionInvalid splits failing bindings into the ones a prompt can fix
// and disabled ones it cannot.
func partitionInvalid(bindings []form.Binding) (invalid []form.Binding, stuck []string) {
	for _, binding := range bindings {
		if binding.Error == "" {
			continue
		}
		if binding.Enabled {
			invalid = append(invalid, binding)
			continue
		}
		stuck = append(stuck, binding.Label+": "+binding.Error)
	}
	return invalid, stuck
}

func (r *Renderer) uncorrectable(ctx context.Context, formErrors, stuck []string) error {
	messages := append(append([]string(nil), formErrors...), stuck...)
	for _, message := range messages {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}
	if len(messages) == 0 {
		return ErrFormInvalid
	}
	return fmt.Errorf("%w: %s", ErrFormInvalid, strings.Join(messages, "; "))
}

func (r *Renderer) promptBinding(ctx context.Context, binding form.Binding, event form.Event) error {
	value, err := r.ask(ctx, binding)
	if err != nil {
		return err
	}
	if err := binding.Report(value, event); err != nil {
		return fmt.Errorf("tui: report %q: %w", binding.Key, err)
	}
	return nil
}

func (r *Renderer) ask(ctx context.Context, binding form.Binding) (any, error) {
	help := plainText(binding.HelpText)
	if binding.HelpText != "" && r.theme.InfoPrefix != "" {
		help = r.theme.InfoPrefix + help
	}
	current := formatValue(binding.Value)

	switch r.widgets.Resolve(binding) {
	case widgets.WidgetCheckbox:
		return r.driver.Confirm(ctx, ConfirmConfig{
			Message: binding.Label,
			Default: truthy(binding.Value),
			Help:    help,
		})
	case widgets.WidgetSelect:
		labels, values := selectOptions(binding)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      binding.Label,
			Options:      labels,
			DefaultIndex: indexOf(values, current),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return "", nil
		}
		return values[idx], nil
	case widgets.WidgetPassword:
		return r.driver.Password(ctx, InputConfig{
			Message: binding.Label,
			Help:    help,
		})
	case widgets.WidgetNumber:
		text, err := r.driver.Input(ctx, InputConfig{
			Message:     binding.Label,
			Default:     current,
			Help:        help,
			Placeholder: binding.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		return parseNumber(text), nil
	default:
		return r.driver.Input(ctx, InputConfig{
			Message:     binding.Label,
			Default:     current,
			Help:        help,
			Placeholder: binding.Placeholder,
		})
	}
}

// selectOptions flattens grouped choices into prompt labels, prefixing the
// group name. Optional fields get a leading NoneOption.
func selectOptions(binding form.Binding) (labels, values []string) {
	if !binding.Required {
		labels = append(labels, NoneOption)
		values = append(values, "")
	}
	for _, group := range binding.Choices {
		for _, option := range group.Options {
			label := option.Label
			if group.Name != "" {
				label = group.Name + " / " + label
			}
			labels = append(labels, label)
			values = append(values, option.Value)
		}
	}
	return labels, values
}

func (r *Renderer) finish(values map[string]any) ([]byte, error) {
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return jsonBytes(values)
	}
}

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// plainText strips markup from help text meant for HTML output.
func plainText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(plainPolicy.Sanitize(text))
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}

// parseNumber returns a float64 for numeric text and the raw text otherwise,
// leaving the verdict to the field rule.
func parseNumber(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return text
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", formatValue(val))
		}
	default:
		out.Set(prefix, formatValue(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, formatValue(v))
		}
	}
}

func jsonBytes(values map[string]any) ([]byte, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("tui: marshal values: %w", err)
	}
	return payload, nil
}
