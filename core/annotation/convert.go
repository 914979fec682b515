package annotation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FromMap builds an annotation of the given kind from loosely typed values,
// as produced by Go source directives (all strings) or decoded YAML.
//
// Conversion rules:
//   - bool and int attributes accept their native type or a parsable string
//   - string lists accept []string, []any or a comma separated string
//   - nested annotations accept an Annotation, a map, or a string shorthand
//     that sets the nested "name" attribute
//   - nested lists accept []Annotation, []any of maps, or a map keyed by
//     position ("0", "1", ...)
//   - dotted keys address nested values: foreign_key.name="FK_X",
//     pk_join_columns.0.name="CUST_ID"
func FromMap(kind Kind, values map[string]any) (Annotation, error) {
	s, err := Lookup(kind)
	if err != nil {
		return Annotation{}, err
	}
	expanded, err := expandDotted(kind, values)
	if err != nil {
		return Annotation{}, err
	}

	a := New(kind)
	for _, name := range sortedKeys(expanded) {
		raw := expanded[name]
		def, ok := s.Attribute(name)
		if !ok {
			return Annotation{}, &AttributeError{Kind: kind, Attribute: name, Value: raw, Reason: "unknown attribute"}
		}
		v, err := coerce(kind, def, raw)
		if err != nil {
			return Annotation{}, err
		}
		a.Attrs[name] = v
	}
	return a, nil
}

func coerce(kind Kind, def AttributeDef, raw any) (any, error) {
	fail := func(reason string) error {
		return &AttributeError{Kind: kind, Attribute: def.Name, Value: raw, Reason: reason}
	}

	switch def.Type {
	case StringValue:
		switch v := raw.(type) {
		case string:
			return v, nil
		case bool, int, int64, float64:
			return fmt.Sprint(v), nil
		}
		return nil, fail("expected a string")

	case BoolValue:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fail("expected a boolean")
			}
			return b, nil
		}
		return nil, fail("expected a boolean")

	case IntValue:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err == nil {
				return n, nil
			}
		}
		return nil, fail("expected an integer")

	case StringListValue:
		switch v := raw.(type) {
		case []string:
			return v, nil
		case string:
			return splitList(v), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					return nil, fail("expected a list of strings")
				}
				out = append(out, str)
			}
			return out, nil
		}
		return nil, fail("expected a list of strings")

	case NestedValue:
		return coerceNested(kind, def, raw)

	case NestedListValue:
		switch v := raw.(type) {
		case []Annotation:
			return v, nil
		case []any:
			out := make([]Annotation, 0, len(v))
			for _, item := range v {
				n, err := coerceNested(kind, def, item)
				if err != nil {
					return nil, err
				}
				out = append(out, n)
			}
			return out, nil
		case map[string]any:
			return positional(kind, def, v)
		}
		return nil, fail("expected a list of " + string(def.Nested))
	}
	return nil, fail("unsupported attribute type")
}

func coerceNested(kind Kind, def AttributeDef, raw any) (Annotation, error) {
	switch v := raw.(type) {
	case Annotation:
		return v, nil
	case map[string]any:
		return FromMap(def.Nested, v)
	case string:
		return FromMap(def.Nested, map[string]any{"name": v})
	}
	return Annotation{}, &AttributeError{Kind: kind, Attribute: def.Name, Value: raw, Reason: "expected " + string(def.Nested)}
}

// positional converts {"0": {...}, "1": {...}} into an ordered list.
func positional(kind Kind, def AttributeDef, m map[string]any) ([]Annotation, error) {
	type indexed struct {
		pos int
		val any
	}
	items := make([]indexed, 0, len(m))
	for k, v := range m {
		pos, err := strconv.Atoi(k)
		if err != nil || pos < 0 {
			return nil, &AttributeError{Kind: kind, Attribute: def.Name + "." + k, Value: v, Reason: "expected a list position"}
		}
		items = append(items, indexed{pos: pos, val: v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	out := make([]Annotation, 0, len(items))
	for _, item := range items {
		n, err := coerceNested(kind, def, item.val)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// expandDotted turns {"a.b": v} into {"a": {"b": v}}.
func expandDotted(kind Kind, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for _, key := range sortedKeys(values) {
		parts := strings.Split(key, ".")
		cur := out
		for i, part := range parts {
			if part == "" {
				return nil, &AttributeError{Kind: kind, Attribute: key, Value: values[key], Reason: "empty key segment"}
			}
			if i == len(parts)-1 {
				if _, exists := cur[part]; exists {
					return nil, &AttributeError{Kind: kind, Attribute: key, Value: values[key], Reason: "conflicting keys"}
				}
				cur[part] = values[key]
				break
			}
			next, ok := cur[part].(map[string]any)
			if !ok {
				if _, exists := cur[part]; exists {
					return nil, &AttributeError{Kind: kind, Attribute: key, Value: values[key], Reason: "conflicting keys"}
				}
				next = map[string]any{}
				cur[part] = next
			}
			cur = next
		}
	}
	return out, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
