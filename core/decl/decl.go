// Package decl holds the explicit registration records of persistent classes:
// the classes, their members and the mapping annotations attached to both.
//
// Records can be written by hand, parsed from Go source directives
// (see package goentity) or loaded from YAML mapping files (see package
// mappingfile). They carry literal attribute values only; validation and
// defaulting happen later, when the registry resolves them.
//
// Example:
//
//	customer := decl.NewClass("Customer",
//		annotation.New(annotation.Entity),
//		annotation.New(annotation.SecondaryTable).With("name", "CUST_DETAIL"),
//	).
//		Field("ID", "int64", annotation.New(annotation.Id)).
//		Field("Images", "map[string]Image",
//			annotation.New(annotation.OneToMany),
//			annotation.New(annotation.MapKeyColumn),
//		)
package decl

import (
	"fmt"
	"strings"

	"github.com/stokaro/ormeta/core/annotation"
)

// ElementKind is the kind of program element an annotation is attached to.
type ElementKind int

const (
	ElementType ElementKind = iota
	ElementField
	ElementAccessor
)

func (k ElementKind) String() string {
	switch k {
	case ElementType:
		return "type"
	case ElementField:
		return "field"
	case ElementAccessor:
		return "accessor"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Target converts the element kind to the matching schema target bit.
func (k ElementKind) Target() annotation.Target {
	switch k {
	case ElementType:
		return annotation.TargetType
	case ElementField:
		return annotation.TargetField
	case ElementAccessor:
		return annotation.TargetAccessor
	default:
		return 0
	}
}

// ParseElementKind parses "type", "field" or "accessor".
func ParseElementKind(s string) (ElementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type":
		return ElementType, nil
	case "", "field":
		return ElementField, nil
	case "accessor", "method", "property":
		return ElementAccessor, nil
	default:
		return 0, fmt.Errorf("unknown element kind %q", s)
	}
}

// Position locates a declaration in its source, when known.
type Position struct {
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

func (p Position) String() string {
	if p.File == "" {
		return ""
	}
	if p.Line > 0 {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return p.File
}

// Member is a field or accessor of a persistent class.
type Member struct {
	Name        string                  // field or accessor name, used for column name defaulting
	Element     ElementKind             // ElementField or ElementAccessor
	Type        string                  // declared Go type expression, e.g. "int64", "map[string]Image"
	Annotations []annotation.Annotation // in declaration order
	Pos         Position
}

// Class is a persistent class declaration.
type Class struct {
	Name        string                  // class name, unique within a registry
	Super       string                  // direct supertype, empty if none
	Annotations []annotation.Annotation // type-level annotations in declaration order
	Members     []Member                // members in declaration order
	Pos         Position
}

// NewClass starts a class declaration with the given type-level annotations.
func NewClass(name string, annotations ...annotation.Annotation) *Class {
	return &Class{Name: name, Annotations: annotations}
}

// Extends sets the direct supertype.
func (c *Class) Extends(super string) *Class {
	c.Super = super
	return c
}

// Field appends a field member.
func (c *Class) Field(name, typ string, annotations ...annotation.Annotation) *Class {
	c.Members = append(c.Members, Member{Name: name, Element: ElementField, Type: typ, Annotations: annotations})
	return c
}

// Accessor appends an accessor member.
func (c *Class) Accessor(name, typ string, annotations ...annotation.Annotation) *Class {
	c.Members = append(c.Members, Member{Name: name, Element: ElementAccessor, Type: typ, Annotations: annotations})
	return c
}

// Has reports whether a type-level annotation of the given kind is present.
func (c *Class) Has(kind annotation.Kind) bool {
	return hasKind(c.Annotations, kind)
}

// Member returns the member with the given name.
func (c *Class) Member(name string) (Member, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Has reports whether an annotation of the given kind is present on the member.
func (m Member) Has(kind annotation.Kind) bool {
	return hasKind(m.Annotations, kind)
}

// Find returns the first annotation of the given kind on the member.
func (m Member) Find(kind annotation.Kind) (annotation.Annotation, bool) {
	for _, a := range m.Annotations {
		if a.Kind == kind {
			return a, true
		}
	}
	return annotation.Annotation{}, false
}

// FindAll returns every annotation of the given kind on the member, in declaration order.
func (m Member) FindAll(kind annotation.Kind) []annotation.Annotation {
	var out []annotation.Annotation
	for _, a := range m.Annotations {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func hasKind(annotations []annotation.Annotation, kind annotation.Kind) bool {
	for _, a := range annotations {
		if a.Kind == kind {
			return true
		}
	}
	return false
}
