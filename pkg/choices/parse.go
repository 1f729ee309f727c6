package choices

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Parse converts loosely typed input (as produced by encoding/json or
// yaml.v3 decoding into any) into UserChoices:
//
//	nil, false                 -> None
//	true                       -> Derive
//	[]                         -> empty Values
//	[v1, v2]                   -> Values
//	[[v, label], ...]          -> Pairs
//	[[name, <flat>], ...]      -> Groups
//	{v: label}                 -> Mapping (keys sorted)
//	{name: <flat>}             -> Groups (keys sorted)
//
// Typed Go values of the same shapes ([]int, [][]string,
// map[string][]string and so on) are accepted too. Go maps carry no order,
// so mapping and group keys are sorted. Use ParseYAML to keep document
// order.
func Parse(value any) (UserChoices, error) {
	switch typed := value.(type) {
	case nil:
		return None(), nil
	case UserChoices:
		return typed, nil
	case bool:
		if typed {
			return Derive(), nil
		}
		return None(), nil
	case []string:
		return Values(typed...), nil
	case []Option:
		return Pairs(typed...), nil
	case [][2]string:
		options := make([]Option, 0, len(typed))
		for _, pair := range typed {
			options = append(options, Pair(pair[0], pair[1]))
		}
		return Pairs(options...), nil
	case map[string]string:
		keys := sortedKeys(typed)
		options := make([]Option, 0, len(keys))
		for _, key := range keys {
			options = append(options, Pair(key, typed[key]))
		}
		return Mapping(options...), nil
	case []any:
		return parseList(typed)
	case map[string]any:
		return parseMap(typed)
	}
	if generic, ok := toGeneric(reflect.ValueOf(value)); ok {
		return Parse(generic)
	}
	return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("unsupported input %T", value)}
}

// toGeneric rewrites typed slices, arrays and string keyed maps such as
// map[string][]string into []any and map[string]any, recursively.
func toGeneric(rv reflect.Value) (any, bool) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = genericValue(rv.Index(i))
		}
		return items, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = genericValue(iter.Value())
		}
		return out, true
	}
	return nil, false
}

func genericValue(rv reflect.Value) any {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if generic, ok := toGeneric(rv); ok {
		return generic
	}
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return rv.Interface()
}

func parseList(items []any) (UserChoices, error) {
	if len(items) == 0 {
		return Values(), nil
	}

	if _, ok := asTuple(items[0]); !ok {
		values := make([]string, 0, len(items))
		for idx, item := range items {
			value, ok := scalar(item)
			if !ok {
				return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("entry %d is not a plain value", idx)}
			}
			values = append(values, value)
		}
		return Values(values...), nil
	}

	tuples := make([][2]any, 0, len(items))
	grouped := false
	for idx, item := range items {
		tuple, ok := asTuple(item)
		if !ok {
			return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("entry %d is not a two element list", idx)}
		}
		if _, ok := scalar(tuple[1]); !ok {
			grouped = true
		}
		tuples = append(tuples, tuple)
	}

	if !grouped {
		options := make([]Option, 0, len(tuples))
		for idx, tuple := range tuples {
			value, ok := scalar(tuple[0])
			if !ok {
				return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("entry %d has a non scalar value", idx)}
			}
			label, _ := scalar(tuple[1])
			options = append(options, Pair(value, label))
		}
		return Pairs(options...), nil
	}

	entries := make([]Entry, 0, len(tuples))
	for idx, tuple := range tuples {
		name, ok := scalar(tuple[0])
		if !ok {
			return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("entry %d has a non scalar group name", idx)}
		}
		content, err := parseGroup(name, tuple[1])
		if err != nil {
			return UserChoices{}, err
		}
		entries = append(entries, Named(name, content))
	}
	return Groups(entries...), nil
}

func parseMap(m map[string]any) (UserChoices, error) {
	keys := sortedKeys(m)

	flat := true
	for _, key := range keys {
		if _, ok := m[key].(string); !ok {
			flat = false
			break
		}
	}
	if flat {
		options := make([]Option, 0, len(keys))
		for _, key := range keys {
			options = append(options, Pair(key, m[key].(string)))
		}
		return Mapping(options...), nil
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		content, err := parseGroup(key, m[key])
		if err != nil {
			return UserChoices{}, err
		}
		entries = append(entries, Named(key, content))
	}
	return Groups(entries...), nil
}

func parseGroup(name string, value any) (UserChoices, error) {
	content, err := Parse(value)
	if err != nil {
		return UserChoices{}, &InvalidChoicesError{Group: name, Reason: reasonOf(err)}
	}
	if _, ok := content.flat(); !ok {
		return UserChoices{}, &InvalidChoicesError{
			Group:  name,
			Shape:  content.shape,
			Reason: "group must hold values, pairs or a mapping",
		}
	}
	return content, nil
}

// ParseYAML is Parse for a yaml.v3 node, preserving mapping order.
func ParseYAML(node *yaml.Node) (UserChoices, error) {
	node = resolve(node)
	if node == nil {
		return None(), nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return None(), nil
		}
		return ParseYAML(node.Content[0])
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return None(), nil
		case "!!bool":
			var derive bool
			if err := node.Decode(&derive); err != nil {
				return UserChoices{}, &InvalidChoicesError{Reason: err.Error()}
			}
			if derive {
				return Derive(), nil
			}
			return None(), nil
		}
		return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("line %d: scalar %q is not a choice list", node.Line, node.Value)}
	case yaml.SequenceNode:
		return parseYAMLSequence(node)
	case yaml.MappingNode:
		return parseYAMLMapping(node)
	}
	return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("line %d: unsupported node", node.Line)}
}

func parseYAMLSequence(node *yaml.Node) (UserChoices, error) {
	items := make([]*yaml.Node, 0, len(node.Content))
	for _, item := range node.Content {
		items = append(items, resolve(item))
	}
	if len(items) == 0 {
		return Values(), nil
	}

	if items[0].Kind != yaml.SequenceNode {
		values := make([]string, 0, len(items))
		for _, item := range items {
			if item.Kind != yaml.ScalarNode {
				return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("line %d: expected a plain value", item.Line)}
			}
			values = append(values, item.Value)
		}
		return Values(values...), nil
	}

	grouped := false
	for _, item := range items {
		if item.Kind != yaml.SequenceNode || len(item.Content) != 2 {
			return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("line %d: expected a two element list", item.Line)}
		}
		if resolve(item.Content[1]).Kind != yaml.ScalarNode {
			grouped = true
		}
	}

	if !grouped {
		options := make([]Option, 0, len(items))
		for _, item := range items {
			value := resolve(item.Content[0])
			if value.Kind != yaml.ScalarNode {
				return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("line %d: expected a plain value", value.Line)}
			}
			options = append(options, Pair(value.Value, resolve(item.Content[1]).Value))
		}
		return Pairs(options...), nil
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		name := resolve(item.Content[0])
		if name.Kind != yaml.ScalarNode {
			return UserChoices{}, &InvalidChoicesError{Reason: fmt.Sprintf("line %d: expected a group name", name.Line)}
		}
		content, err := parseYAMLGroup(name.Value, item.Content[1])
		if err != nil {
			return UserChoices{}, err
		}
		entries = append(entries, Named(name.Value, content))
	}
	return Groups(entries...), nil
}

func parseYAMLMapping(node *yaml.Node) (UserChoices, error) {
	flat := true
	for i := 1; i < len(node.Content); i += 2 {
		value := resolve(node.Content[i])
		if value.Kind != yaml.ScalarNode || value.ShortTag() != "!!str" {
			flat = false
			break
		}
	}

	if flat {
		options := make([]Option, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			options = append(options, Pair(resolve(node.Content[i]).Value, resolve(node.Content[i+1]).Value))
		}
		return Mapping(options...), nil
	}

	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := resolve(node.Content[i]).Value
		content, err := parseYAMLGroup(name, node.Content[i+1])
		if err != nil {
			return UserChoices{}, err
		}
		entries = append(entries, Named(name, content))
	}
	return Groups(entries...), nil
}

func parseYAMLGroup(name string, node *yaml.Node) (UserChoices, error) {
	content, err := ParseYAML(node)
	if err != nil {
		return UserChoices{}, &InvalidChoicesError{Group: name, Reason: reasonOf(err)}
	}
	if _, ok := content.flat(); !ok {
		return UserChoices{}, &InvalidChoicesError{
			Group:  name,
			Shape:  content.shape,
			Reason: "group must hold values, pairs or a mapping",
		}
	}
	return content, nil
}

// UnmarshalYAML lets UserChoices appear directly in YAML documents.
func (c *UserChoices) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseYAML(node)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func asTuple(value any) ([2]any, bool) {
	switch typed := value.(type) {
	case []any:
		if len(typed) == 2 {
			return [2]any{typed[0], typed[1]}, true
		}
	case []string:
		if len(typed) == 2 {
			return [2]any{typed[0], typed[1]}, true
		}
	case [2]string:
		return [2]any{typed[0], typed[1]}, true
	}
	return [2]any{}, false
}

func scalar(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(typed), true
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case json.Number:
		return typed.String(), true
	}
	return "", false
}

func reasonOf(err error) string {
	if invalid, ok := err.(*InvalidChoicesError); ok && invalid.Reason != "" {
		return invalid.Reason
	}
	return err.Error()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
