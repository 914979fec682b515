// Package collector walks declared classes and extracts the mapping
// annotations present on the type and on each of its members.
//
// The produced sequence is deterministic: type-level annotations come first,
// followed by member annotations in member declaration order. Within one
// element the annotation declaration order is kept, which matters for
// repeatable kinds such as SecondaryTable and JoinColumn.
package collector

import (
	"fmt"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
)

// ElementRef identifies the program element an annotation was found on.
type ElementRef struct {
	Class  string
	Member string // empty for type-level annotations
	Kind   decl.ElementKind
}

func (r ElementRef) String() string {
	if r.Member == "" {
		return r.Class
	}
	return r.Class + "." + r.Member
}

// Record is one raw annotation instance together with its location and schema.
type Record struct {
	Element    ElementRef
	Annotation annotation.Annotation
	Schema     *annotation.Schema
	Pos        decl.Position
}

// Collect returns the ordered raw annotation sequence of the class.
//
// A class or member without mapping annotations contributes nothing; this is
// never an error. An annotation of an unknown kind fails with
// *annotation.SchemaError, one placed on an element kind its schema forbids
// fails with *UnsupportedTargetError.
func Collect(class *decl.Class) ([]Record, error) {
	var records []Record

	typeRef := ElementRef{Class: class.Name, Kind: decl.ElementType}
	for _, a := range class.Annotations {
		rec, err := record(typeRef, a, class.Pos)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	for _, m := range class.Members {
		ref := ElementRef{Class: class.Name, Member: m.Name, Kind: m.Element}
		for _, a := range m.Annotations {
			rec, err := record(ref, a, m.Pos)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

func record(ref ElementRef, a annotation.Annotation, pos decl.Position) (Record, error) {
	s, err := annotation.Lookup(a.Kind)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", ref, err)
	}
	if !s.Targets.Allows(ref.Kind.Target()) {
		return Record{}, &UnsupportedTargetError{Kind: a.Kind, Element: ref, Allowed: s.Targets}
	}
	return Record{Element: ref, Annotation: a, Schema: s, Pos: pos}, nil
}

// Hierarchy returns the supertype chain of class, root first, excluding the
// class itself. Supertypes are looked up by name; a missing supertype ends the
// chain and is reported by the validator. A supertype loop fails.
func Hierarchy(lookup func(name string) (*decl.Class, bool), class *decl.Class) ([]*decl.Class, error) {
	var chain []*decl.Class
	seen := map[string]bool{class.Name: true}
	path := []string{class.Name}

	for name := class.Super; name != ""; {
		if seen[name] {
			return nil, fmt.Errorf("supertype loop: %v", append(path, name))
		}
		seen[name] = true
		path = append(path, name)

		super, ok := lookup(name)
		if !ok {
			break
		}
		chain = append(chain, super)
		name = super.Super
	}

	// reverse to root first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
