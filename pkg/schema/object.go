package schema

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

var (
	// ErrEmptyKey is returned when a property has no key.
	ErrEmptyKey = errors.New("schema: property key is empty")
	// ErrDuplicateKey is returned when two properties share a key.
	ErrDuplicateKey = errors.New("schema: duplicate property key")
	// ErrNilField is returned when a property has no rule.
	ErrNilField = errors.New("schema: property rule is nil")
)

// Property binds a key to its rule.
type Property struct {
	Key   string
	Field Field
}

// Prop is shorthand for a Property literal.
func Prop(key string, field Field) Property {
	return Property{Key: key, Field: field}
}

// CustomFunc runs after every property passed and may report cross-field
// failures. Returning criterio.FieldErrors (see FieldError) marks them as
// validation failures; any other error is treated as unexpected.
type CustomFunc func(cleaned map[string]any) error

// Object is an ordered collection of property rules.
type Object struct {
	props  []Property
	index  map[string]int
	custom []CustomFunc
}

// NewObject builds an Object keeping the property order.
func NewObject(props ...Property) (*Object, error) {
	obj := &Object{
		props: make([]Property, 0, len(props)),
		index: make(map[string]int, len(props)),
	}
	for _, prop := range props {
		if prop.Key == "" {
			return nil, ErrEmptyKey
		}
		if prop.Field == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilField, prop.Key)
		}
		if _, exists := obj.index[prop.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, prop.Key)
		}
		obj.index[prop.Key] = len(obj.props)
		obj.props = append(obj.props, prop)
	}
	return obj, nil
}

// MustObject is NewObject that panics on error.
func MustObject(props ...Property) *Object {
	obj, err := NewObject(props...)
	if err != nil {
		panic(err)
	}
	return obj
}

// WithCustom returns a copy of o that also runs fn.
func (o *Object) WithCustom(fn CustomFunc) *Object {
	clone := &Object{
		props:  o.props,
		index:  o.index,
		custom: append(append([]CustomFunc(nil), o.custom...), fn),
	}
	return clone
}

// Keys returns the property keys in declaration order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.props))
	for _, prop := range o.props {
		keys = append(keys, prop.Key)
	}
	return keys
}

// Field returns the rule registered under key.
func (o *Object) Field(key string) (Field, bool) {
	idx, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.props[idx].Field, true
}

// Validate checks every property of values. On success it returns the
// cleaned values keyed like the object. Field failures are reported as
// criterio.FieldErrors in property order.
func (o *Object) Validate(values map[string]any) (map[string]any, error) {
	var errs criterio.FieldErrorsBuilder
	cleaned := make(map[string]any, len(o.props))

	for _, prop := range o.props {
		res := prop.Field.Check(values[prop.Key])
		if !res.Valid() {
			errs = errs.Append(prop.Key, errors.New(res.Error))
			continue
		}
		cleaned[prop.Key] = res.Value
	}
	if err := errs.ToError(); err != nil {
		return nil, err
	}

	for _, fn := range o.custom {
		if fn == nil {
			continue
		}
		if err := fn(cleaned); err != nil {
			var fieldErrs criterio.FieldErrors
			if errors.As(err, &fieldErrs) {
				return nil, err
			}
			return nil, fmt.Errorf("schema: custom validation: %w", err)
		}
	}

	return cleaned, nil
}

// FieldError builds a validation failure for key, for use in a CustomFunc.
func FieldError(key, message string) error {
	return criterio.NewFieldErrors(key, errors.New(message))
}
