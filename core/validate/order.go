package validate

import (
	"slices"
	"sort"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
)

const (
	roleSupertype  = "supertype"
	roleEmbeddable = "embeddable"
	roleMapValue   = "map value"
)

type dependency struct {
	name    string
	element string
	role    string
}

// dependencies lists what class needs resolved before itself: the
// supertype, embedded and embedded id embeddables, and the target entity of
// map-valued OneToMany and ManyToMany associations, whose table provides
// the default map key table.
func dependencies(class *decl.Class) []dependency {
	var deps []dependency
	if class.Super != "" {
		deps = append(deps, dependency{name: class.Super, element: class.Name, role: roleSupertype})
	}
	for _, m := range class.Members {
		element := class.Name + "." + m.Name
		switch {
		case m.Has(annotation.Transient):
		case m.Has(annotation.EmbeddedId), m.Has(annotation.Embedded):
			if name := decl.ElementTypeName(m.Type); name != "" {
				deps = append(deps, dependency{name: name, element: element, role: roleEmbeddable})
			}
		case m.Has(annotation.MapKeyColumn) && (m.Has(annotation.OneToMany) || m.Has(annotation.ManyToMany)):
			if name := targetEntity(m); name != "" {
				deps = append(deps, dependency{name: name, element: element, role: roleMapValue})
			}
		}
	}
	return deps
}

// Dependencies returns the names of the classes that must be resolved before
// class, without duplicates, in declaration order.
func Dependencies(class *decl.Class) []string {
	var names []string
	for _, dep := range dependencies(class) {
		if !slices.Contains(names, dep.name) {
			names = append(names, dep.name)
		}
	}
	return names
}

// targetEntity returns the class a relationship or element collection member
// refers to: the explicit target_entity / target_class, or the element type
// of the member.
func targetEntity(m decl.Member) string {
	for _, a := range m.Annotations {
		s, err := annotation.Lookup(a.Kind)
		if err != nil {
			continue
		}
		switch {
		case s.Relationship:
			if t := a.String("target_entity"); t != "" {
				return t
			}
		case a.Kind == annotation.ElementCollection:
			if t := a.String("target_class"); t != "" {
				return t
			}
		}
	}
	return decl.ElementTypeName(m.Type)
}

// Order groups the classes into dependency levels using Kahn's algorithm.
// Every class of a level depends only on classes of earlier levels, so the
// classes of one level can be resolved in parallel. Names are sorted within
// a level. Dependencies on classes outside the set and on the class itself
// are ignored here; the validator reports unknown references.
//
// A dependency cycle fails with *CyclicReferenceError.
func Order(classes []*decl.Class) ([][]string, error) {
	known := make(map[string]bool, len(classes))
	inDegree := make(map[string]int, len(classes))
	for _, c := range classes {
		known[c.Name] = true
		inDegree[c.Name] = 0
	}

	deps := make(map[string][]string, len(classes))
	dependents := make(map[string][]string, len(classes))
	for _, c := range classes {
		for _, dep := range Dependencies(c) {
			if dep == c.Name || !known[dep] {
				continue
			}
			deps[c.Name] = append(deps[c.Name], dep)
			dependents[dep] = append(dependents[dep], c.Name)
			inDegree[c.Name]++
		}
	}

	var current []string
	for name, degree := range inDegree {
		if degree == 0 {
			current = append(current, name)
		}
	}

	var levels [][]string
	done := 0
	for len(current) > 0 {
		sort.Strings(current)
		levels = append(levels, current)
		done += len(current)

		var next []string
		for _, name := range current {
			for _, dependent := range dependents[name] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if done < len(inDegree) {
		return nil, &CyclicReferenceError{Cycle: findCycle(deps, inDegree)}
	}
	return levels, nil
}

// findCycle walks unresolved dependencies from the smallest unresolved name
// until a class repeats. Every unresolved class has at least one unresolved
// dependency, so the walk always closes a cycle.
func findCycle(deps map[string][]string, inDegree map[string]int) []string {
	var remaining []string
	for name, degree := range inDegree {
		if degree > 0 {
			remaining = append(remaining, name)
		}
	}
	sort.Strings(remaining)

	pos := map[string]int{}
	var path []string
	for cur := remaining[0]; ; {
		if i, seen := pos[cur]; seen {
			return append(path[i:], cur)
		}
		pos[cur] = len(path)
		path = append(path, cur)

		next := slices.Clone(deps[cur])
		sort.Strings(next)
		for _, dep := range next {
			if inDegree[dep] > 0 {
				cur = dep
				break
			}
		}
	}
}
