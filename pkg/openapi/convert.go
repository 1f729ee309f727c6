package openapi

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/choices"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/schema"
)

const extensionNamespace = "x-formgen"

// hints is the decoded x-formgen extension of a property.
type hints struct {
	Label        string
	ID           string
	HelpText     string
	Placeholder  string
	HideOptional bool
	Enabled      *bool
	Order        *float64
}

type property struct {
	key   string
	order *float64
	field schema.Field
}

func convertObject(operationID, method, path string, body *openapi3.Schema, logger zerolog.Logger) (*Form, error) {
	out := &Form{
		OperationID: operationID,
		Method:      method,
		Path:        path,
	}

	props := make([]property, 0, len(body.Properties))
	for key, ref := range body.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		src := ref.Value
		if src.Type.Is(openapi3.TypeObject) || src.Type.Is(openapi3.TypeArray) {
			out.Skipped = append(out.Skipped, key)
			logger.Debug().Str("property", key).Msg("skipping nested property")
			continue
		}

		h := parseHints(src.Extensions)
		rule, err := convertRule(src, slices.Contains(body.Required, key))
		if err != nil {
			return nil, fmt.Errorf("openapi: property %q: %w", key, err)
		}

		meta := field.Metadata{
			Label:        h.Label,
			ID:           h.ID,
			Enabled:      h.Enabled,
			HelpText:     h.HelpText,
			Placeholder:  h.Placeholder,
			HideOptional: h.HideOptional,
		}
		if meta.HelpText == "" {
			meta.HelpText = strings.TrimSpace(src.Description)
		}
		if len(rule.Choices()) > 0 {
			meta.SelectFrom = choices.Derive()
		}
		decl, err := field.Declare(meta)(rule)
		if err != nil {
			return nil, fmt.Errorf("openapi: property %q: %w", key, err)
		}

		if src.Default != nil {
			if out.Defaults == nil {
				out.Defaults = make(map[string]any)
			}
			out.Defaults[key] = src.Default
		}
		props = append(props, property{key: key, order: h.Order, field: decl})
	}
	sort.Strings(out.Skipped)

	// x-formgen order first, then by key.
	sort.SliceStable(props, func(i, j int) bool {
		a, b := props[i], props[j]
		switch {
		case a.order != nil && b.order != nil && *a.order != *b.order:
			return *a.order < *b.order
		case a.order != nil && b.order == nil:
			return true
		case a.order == nil && b.order != nil:
			return false
		default:
			return a.key < b.key
		}
	})

	schemaProps := make([]schema.Property, 0, len(props))
	for _, prop := range props {
		schemaProps = append(schemaProps, schema.Prop(prop.key, prop.field))
	}
	obj, err := schema.NewObject(schemaProps...)
	if err != nil {
		return nil, fmt.Errorf("openapi: build schema: %w", err)
	}
	out.Schema = obj
	return out, nil
}

func convertRule(src *openapi3.Schema, required bool) (schema.Field, error) {
	switch {
	case src.Type.Is(openapi3.TypeBoolean):
		return schema.Boolean(), nil
	case src.Type.Is(openapi3.TypeInteger), src.Type.Is(openapi3.TypeNumber):
		rule := schema.Number()
		if src.Type.Is(openapi3.TypeInteger) {
			rule = schema.Integer()
		}
		if !required {
			rule = rule.Optional()
		}
		if src.Min != nil {
			rule = rule.Min(*src.Min)
		}
		if src.Max != nil {
			rule = rule.Max(*src.Max)
		}
		return rule, nil
	case src.Type == nil, src.Type.Is(openapi3.TypeString):
		return convertString(src, required)
	default:
		return nil, fmt.Errorf("unsupported type %v", src.Type.Slice())
	}
}

func convertString(src *openapi3.Schema, required bool) (schema.Field, error) {
	var rule schema.StringField
	switch src.Format {
	case schema.FormatEmail:
		rule = schema.Email()
	case schema.FormatPassword, schema.FormatDate, schema.FormatURI, schema.FormatTextarea:
		rule = schema.String().Format(src.Format)
	case "url":
		rule = schema.String().Format(schema.FormatURI)
	default:
		rule = schema.String()
	}
	if !required {
		rule = rule.Optional()
	}
	if src.MinLength > 0 {
		rule = rule.MinLength(int(src.MinLength))
	}
	if src.MaxLength != nil {
		rule = rule.MaxLength(int(*src.MaxLength))
	}
	if src.Pattern != "" {
		rule = rule.Pattern(src.Pattern)
	}
	if len(src.Enum) > 0 {
		values := make([]string, 0, len(src.Enum))
		for _, value := range src.Enum {
			text, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("enum value %v is not a string", value)
			}
			values = append(values, text)
		}
		rule = rule.OneOf(values...)
	}
	return rule, nil
}

func parseHints(extensions map[string]any) hints {
	raw, ok := extensions[extensionNamespace].(map[string]any)
	if !ok {
		return hints{}
	}
	var h hints
	h.Label = stringHint(raw, "label")
	h.ID = stringHint(raw, "id")
	h.HelpText = stringHint(raw, "helpText")
	h.Placeholder = stringHint(raw, "placeholder")
	if v, ok := raw["hideOptional"].(bool); ok {
		h.HideOptional = v
	}
	if v, ok := raw["enabled"].(bool); ok {
		h.Enabled = field.Enable(v)
	}
	if v, ok := raw["order"].(float64); ok {
		h.Order = &v
	}
	return h
}

func stringHint(raw map[string]any, key string) string {
	value, _ := raw[key].(string)
	return strings.TrimSpace(value)
}
