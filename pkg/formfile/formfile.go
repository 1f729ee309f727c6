// Package formfile loads form definitions from YAML: field rules, their
// presentation metadata and the engine configuration.
package formfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// ErrInvalidFile is wrapped by every structural problem found in a file.
var ErrInvalidFile = errors.New("formfile: invalid form file")

// Field types understood by FieldSpec.Type.
const (
	TypeString   = "string"
	TypeEmail    = schema.FormatEmail
	TypePassword = schema.FormatPassword
	TypeDate     = schema.FormatDate
	TypeURI      = schema.FormatURI
	TypeTextarea = schema.FormatTextarea
	TypeNumber   = "number"
	TypeInteger  = "integer"
	TypeBoolean  = "boolean"
)

// File is a decoded form definition.
//
//	id: signup
//	htmlFormTags: true
//	events: {validateField: blur, validateFieldError: change}
//	order: [name, email]
//	defaults: {name: Ada}
//	fields:
//	  - key: name
//	    type: string
//	    minLength: 2
//	    label: Full name
type File struct {
	ID       string         `yaml:"id,omitempty"`
	FormTags *bool          `yaml:"htmlFormTags,omitempty"`
	Events   Events         `yaml:"events,omitempty"`
	Order    []string       `yaml:"order,omitempty"`
	Defaults map[string]any `yaml:"defaults,omitempty"`
	Fields   []FieldSpec    `yaml:"fields"`
}

// Events names the validation policy events.
type Events struct {
	ValidateField      string `yaml:"validateField,omitempty"`
	ValidateFieldError string `yaml:"validateFieldError,omitempty"`
}

// FieldSpec describes one field: its rule constraints plus inline
// presentation metadata (label, id, selectFrom, enabled, helpText,
// placeholder, hideOptional).
type FieldSpec struct {
	Key         string   `yaml:"key"`
	Type        string   `yaml:"type,omitempty"`
	Optional    bool     `yaml:"optional,omitempty"`
	MinLength   *int     `yaml:"minLength,omitempty"`
	MaxLength   *int     `yaml:"maxLength,omitempty"`
	Pattern     string   `yaml:"pattern,omitempty"`
	OneOf       []string `yaml:"oneOf,omitempty"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	AllowString bool     `yaml:"allowString,omitempty"`

	field.Metadata `yaml:",inline"`
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formfile: read %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Parse decodes a form file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file File
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidFile)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields declared", ErrInvalidFile)
	}
	return &file, nil
}

// Schema builds the object schema, declaring every field with its metadata.
func (f *File) Schema() (*schema.Object, error) {
	props := make([]schema.Property, 0, len(f.Fields))
	for idx, spec := range f.Fields {
		key := strings.TrimSpace(spec.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: field #%d has no key", ErrInvalidFile, idx+1)
		}
		rule, err := spec.rule()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrInvalidFile, key, err)
		}
		decl, err := field.Declare(spec.Metadata)(rule)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		props = append(props, schema.Prop(key, decl))
	}

	obj, err := schema.NewObject(props...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return obj, nil
}

// Options translates the engine settings of the file.
func (f *File) Options() ([]form.Option, error) {
	var opts []form.Option
	if f.ID != "" {
		opts = append(opts, form.WithID(f.ID))
	}
	if f.FormTags != nil {
		opts = append(opts, form.WithFormTags(*f.FormTags))
	}
	if f.Events.ValidateField != "" {
		event, err := form.ParseEvent(f.Events.ValidateField)
		if err != nil {
			return nil, fmt.Errorf("%w: events.validateField: %w", ErrInvalidFile, err)
		}
		opts = append(opts, form.WithValidateFieldEvent(event))
	}
	if f.Events.ValidateFieldError != "" {
		event, err := form.ParseEvent(f.Events.ValidateFieldError)
		if err != nil {
			return nil, fmt.Errorf("%w: events.validateFieldError: %w", ErrInvalidFile, err)
		}
		opts = append(opts, form.WithValidateFieldErrorEvent(event))
	}
	if len(f.Order) > 0 {
		opts = append(opts, form.WithFields(f.Order...))
	}
	if len(f.Defaults) > 0 {
		opts = append(opts, form.WithDefaults(f.Defaults))
	}
	return opts, nil
}

// NewEngine builds an engine for the file. extra options apply after the
// file's own settings.
func (f *File) NewEngine(extra ...form.Option) (*form.Engine, error) {
	obj, err := f.Schema()
	if err != nil {
		return nil, err
	}
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	return form.New(obj, append(opts, extra...)...)
}

func (spec FieldSpec) rule() (schema.Field, error) {
	kind := strings.ToLower(strings.TrimSpace(spec.Type))
	if kind == "" {
		kind = TypeString
	}

	switch kind {
	case TypeNumber, TypeInteger:
		if err := spec.rejectText(kind); err != nil {
			return nil, err
		}
		rule := schema.Number()
		if kind == TypeInteger {
			rule = schema.Integer()
		}
		if spec.Optional {
			rule = rule.Optional()
		}
		if spec.AllowString {
			rule = rule.AllowString()
		}
		if spec.Min != nil {
			rule = rule.Min(*spec.Min)
		}
		if spec.Max != nil {
			rule = rule.Max(*spec.Max)
		}
		return rule, nil
	case TypeBoolean:
		if err := spec.rejectText(kind); err != nil {
			return nil, err
		}
		if spec.Min != nil || spec.Max != nil {
			return nil, fmt.Errorf("min/max do not apply to type %s", kind)
		}
		rule := schema.Boolean()
		if spec.AllowString {
			rule = rule.AllowString()
		}
		return rule, nil
	case TypeString, TypeEmail, TypePassword, TypeDate, TypeURI, TypeTextarea:
		if spec.Min != nil || spec.Max != nil {
			return nil, fmt.Errorf("min/max do not apply to type %s", kind)
		}
		rule := schema.String()
		if kind != TypeString {
			rule = rule.Format(kind)
		}
		if spec.Optional {
			rule = rule.Optional()
		}
		if spec.MinLength != nil {
			rule = rule.MinLength(*spec.MinLength)
		}
		if spec.MaxLength != nil {
			rule = rule.MaxLength(*spec.MaxLength)
		}
		if spec.Pattern != "" {
			if _, err := regexp.Compile(spec.Pattern); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", spec.Pattern, err)
			}
			rule = rule.Pattern(spec.Pattern)
		}
		if len(spec.OneOf) > 0 {
			rule = rule.OneOf(spec.OneOf...)
		}
		return rule, nil
	default:
		return nil, fmt.Errorf("unknown type %q", spec.Type)
	}
}

func (spec FieldSpec) rejectText(kind string) error {
	if spec.MinLength != nil || spec.MaxLength != nil || spec.Pattern != "" || len(spec.OneOf) > 0 {
		return fmt.Errorf("text constraints do not apply to type %s", kind)
	}
	return nil
}
