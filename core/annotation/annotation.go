package annotation

import (
	"maps"
	"slices"
	"sort"
)

// Annotation is a mapping annotation instance: a kind plus its attribute bag.
//
// Attribute values are one of string, bool, int, []string, Annotation or
// []Annotation, as declared by the kind's Schema. Absent attributes take the
// schema default once the annotation is passed through Schema.WithDefaults.
type Annotation struct {
	Kind  Kind           `json:"kind" yaml:"kind"`
	Attrs map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// New returns an annotation of the given kind without attributes.
func New(kind Kind) Annotation {
	return Annotation{Kind: kind, Attrs: map[string]any{}}
}

// With returns a copy of a with the named attribute set to value.
func (a Annotation) With(name string, value any) Annotation {
	attrs := make(map[string]any, len(a.Attrs)+1)
	maps.Copy(attrs, a.Attrs)
	attrs[name] = value
	return Annotation{Kind: a.Kind, Attrs: attrs}
}

// IsSet reports whether the attribute was given explicitly.
func (a Annotation) IsSet(name string) bool {
	_, ok := a.Attrs[name]
	return ok
}

// String returns the string attribute name, or "" when it is absent or not a string.
func (a Annotation) String(name string) string {
	v, _ := a.Attrs[name].(string)
	return v
}

// Bool returns the boolean attribute name, or false when it is absent.
func (a Annotation) Bool(name string) bool {
	v, _ := a.Attrs[name].(bool)
	return v
}

// Int returns the integer attribute name, or 0 when it is absent.
func (a Annotation) Int(name string) int {
	v, _ := a.Attrs[name].(int)
	return v
}

// Strings returns a copy of the string list attribute name.
func (a Annotation) Strings(name string) []string {
	v, _ := a.Attrs[name].([]string)
	return slices.Clone(v)
}

// Nested returns the nested annotation stored under name.
func (a Annotation) Nested(name string) (Annotation, bool) {
	v, ok := a.Attrs[name].(Annotation)
	return v, ok
}

// NestedList returns the nested annotations stored under name, in declaration order.
func (a Annotation) NestedList(name string) []Annotation {
	v, _ := a.Attrs[name].([]Annotation)
	return slices.Clone(v)
}

func (a Annotation) sortedNames() []string {
	names := make([]string, 0, len(a.Attrs))
	for name := range a.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
