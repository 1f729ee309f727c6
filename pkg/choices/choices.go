// Package choices normalizes the many ways a caller can describe the options
// of a selectable field into a single grouped list.
package choices

// Shape identifies how a UserChoices value was specified.
type Shape int

const (
	// ShapeNone means no choices were declared.
	ShapeNone Shape = iota
	// ShapeDerive asks the field rule for its intrinsic allowed values.
	ShapeDerive
	// ShapeValues is a list of plain values, each used as its own label.
	ShapeValues
	// ShapePairs is an ordered list of (value, label) pairs.
	ShapePairs
	// ShapeMapping is an ordered value to label mapping.
	ShapeMapping
	// ShapeGroups is an ordered list of named groups of flat choices.
	ShapeGroups
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeDerive:
		return "derive"
	case ShapeValues:
		return "values"
	case ShapePairs:
		return "pairs"
	case ShapeMapping:
		return "mapping"
	case ShapeGroups:
		return "groups"
	default:
		return "unknown"
	}
}

// Option is a single selectable value with its display label.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Group is a named run of options. An empty Name marks the anonymous group
// produced from flat input.
type Group struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Options []Option `json:"options" yaml:"options"`
}

// List is the normalized choice list. A nil List means the field has no
// choices; a non-nil empty List is a valid, empty set of choices.
type List []Group

// Options returns every option across all groups in order.
func (l List) Options() []Option {
	if l == nil {
		return nil
	}
	out := make([]Option, 0, len(l))
	for _, group := range l {
		out = append(out, group.Options...)
	}
	return out
}

// Lookup reports the label registered for value.
func (l List) Lookup(value string) (string, bool) {
	for _, group := range l {
		for _, option := range group.Options {
			if option.Value == value {
				return option.Label, true
			}
		}
	}
	return "", false
}

// Grouped reports whether any group carries a name.
func (l List) Grouped() bool {
	for _, group := range l {
		if group.Name != "" {
			return true
		}
	}
	return false
}

// Entry is a named group inside a ShapeGroups value. Its Choices must be one
// of the flat shapes (values, pairs or mapping).
type Entry struct {
	Name    string
	Choices UserChoices
}

// UserChoices is the caller-facing description of a field's choices. The
// zero value is ShapeNone.
type UserChoices struct {
	shape   Shape
	values  []string
	options []Option
	groups  []Entry
}

// None reports no choices.
func None() UserChoices {
	return UserChoices{}
}

// Derive requests the rule's intrinsic allowed values.
func Derive() UserChoices {
	return UserChoices{shape: ShapeDerive}
}

// Values builds a flat list where each value labels itself.
func Values(values ...string) UserChoices {
	return UserChoices{shape: ShapeValues, values: append(make([]string, 0, len(values)), values...)}
}

// Pairs builds a flat list of explicit (value, label) pairs.
func Pairs(options ...Option) UserChoices {
	return UserChoices{shape: ShapePairs, options: append(make([]Option, 0, len(options)), options...)}
}

// Mapping builds an ordered value to label mapping.
func Mapping(options ...Option) UserChoices {
	return UserChoices{shape: ShapeMapping, options: append(make([]Option, 0, len(options)), options...)}
}

// Groups builds a grouped list.
func Groups(entries ...Entry) UserChoices {
	return UserChoices{shape: ShapeGroups, groups: append(make([]Entry, 0, len(entries)), entries...)}
}

// Named is shorthand for an Entry literal.
func Named(name string, c UserChoices) Entry {
	return Entry{Name: name, Choices: c}
}

// Pair is shorthand for an Option literal.
func Pair(value, label string) Option {
	return Option{Value: value, Label: label}
}

// Shape reports how the choices were specified.
func (c UserChoices) Shape() Shape {
	return c.shape
}

// IsZero reports whether no choices were declared.
func (c UserChoices) IsZero() bool {
	return c.shape == ShapeNone
}

func (c UserChoices) flat() ([]Option, bool) {
	switch c.shape {
	case ShapeValues:
		out := make([]Option, 0, len(c.values))
		for _, value := range c.values {
			out = append(out, Option{Value: value, Label: value})
		}
		return out, true
	case ShapePairs, ShapeMapping:
		return append(make([]Option, 0, len(c.options)), c.options...), true
	default:
		return nil, false
	}
}

// Chooser exposes the intrinsic allowed values of a rule. A nil result means
// the rule has none.
type Chooser interface {
	Choices() []string
}

// Normalize resolves c against source into a grouped List. Flat shapes become
// a single anonymous group, empty flat input becomes an empty List and
// ShapeNone yields nil.
func Normalize(source Chooser, c UserChoices) (List, error) {
	switch c.shape {
	case ShapeNone:
		return nil, nil
	case ShapeDerive:
		var intrinsic []string
		if source != nil {
			intrinsic = source.Choices()
		}
		if intrinsic == nil {
			return nil, &InvalidChoicesError{Shape: ShapeDerive, Reason: "rule does not declare any choices"}
		}
		c = Values(intrinsic...)
	}

	if options, ok := c.flat(); ok {
		if len(options) == 0 {
			return List{}, nil
		}
		return List{{Options: options}}, nil
	}

	if c.shape != ShapeGroups {
		return nil, &InvalidChoicesError{Shape: c.shape, Reason: "unsupported shape"}
	}

	out := make(List, 0, len(c.groups))
	for _, entry := range c.groups {
		options, ok := entry.Choices.flat()
		if !ok {
			return nil, &InvalidChoicesError{
				Group:  entry.Name,
				Shape:  entry.Choices.shape,
				Reason: "group must hold values, pairs or a mapping",
			}
		}
		out = append(out, Group{Name: entry.Name, Options: options})
	}
	return out, nil
}
