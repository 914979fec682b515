// Package annotation defines the attribute schema of every mapping annotation kind
// understood by ormeta, and the raw annotation values attached to declared classes.
//
// The schema answers three questions for each kind:
//   - where it may be placed (type, field or accessor)
//   - which attributes it carries, with their value types and default literals
//   - whether several instances may coexist on one element (cardinality)
//
// Example:
//
//	schema, err := annotation.Lookup(annotation.SecondaryTable)
//	if err != nil {
//		return err
//	}
//	resolved := schema.WithDefaults(annotation.New(annotation.SecondaryTable).With("name", "CUST_DETAIL"))
package annotation

import "strings"

// Kind names a mapping annotation.
type Kind string

const (
	Entity               Kind = "Entity"
	MappedSuperclass     Kind = "MappedSuperclass"
	Embeddable           Kind = "Embeddable"
	Table                Kind = "Table"
	SecondaryTable       Kind = "SecondaryTable"
	PrimaryKeyJoinColumn Kind = "PrimaryKeyJoinColumn"
	EntityListeners      Kind = "EntityListeners"
	Id                   Kind = "Id"
	EmbeddedId           Kind = "EmbeddedId"
	Column               Kind = "Column"
	JoinColumn           Kind = "JoinColumn"
	MapKeyColumn         Kind = "MapKeyColumn"
	OneToOne             Kind = "OneToOne"
	ManyToOne            Kind = "ManyToOne"
	OneToMany            Kind = "OneToMany"
	ManyToMany           Kind = "ManyToMany"
	ElementCollection    Kind = "ElementCollection"
	Embedded             Kind = "Embedded"
	Transient            Kind = "Transient"

	// Nested-only kinds. They appear as attribute values, never on an element.
	ForeignKey       Kind = "ForeignKey"
	UniqueConstraint Kind = "UniqueConstraint"
	Index            Kind = "Index"
)

// Directive returns the snake_case spelling of the kind used in Go source
// directives, e.g. "secondary_table" for SecondaryTable.
func (k Kind) Directive() string {
	var b strings.Builder
	for i, r := range string(k) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Target is a bitmask of the program element kinds an annotation may be placed on.
type Target uint8

const (
	TargetType Target = 1 << iota
	TargetField
	TargetAccessor

	TargetMember = TargetField | TargetAccessor
)

// Allows reports whether every bit of other is allowed by t.
func (t Target) Allows(other Target) bool {
	return other != 0 && t&other == other
}

func (t Target) String() string {
	if t == 0 {
		return "nested"
	}
	var parts []string
	if t&TargetType != 0 {
		parts = append(parts, "type")
	}
	if t&TargetField != 0 {
		parts = append(parts, "field")
	}
	if t&TargetAccessor != 0 {
		parts = append(parts, "accessor")
	}
	return strings.Join(parts, "|")
}

// Cardinality tells whether an annotation kind may be repeated on one element.
type Cardinality int

const (
	Single Cardinality = iota
	Repeatable
)

func (c Cardinality) String() string {
	if c == Repeatable {
		return "repeatable"
	}
	return "single"
}

// ValueType is the declared type of an annotation attribute.
type ValueType int

const (
	StringValue ValueType = iota
	BoolValue
	IntValue
	StringListValue
	NestedValue
	NestedListValue
)

func (v ValueType) String() string {
	switch v {
	case StringValue:
		return "string"
	case BoolValue:
		return "bool"
	case IntValue:
		return "int"
	case StringListValue:
		return "[]string"
	case NestedValue:
		return "annotation"
	case NestedListValue:
		return "[]annotation"
	default:
		return "unknown"
	}
}

// Foreign key constraint modes accepted by the ForeignKey "value" attribute.
const (
	ConstraintProviderDefault = "PROVIDER_DEFAULT"
	ConstraintConstraint      = "CONSTRAINT"
	ConstraintNoConstraint    = "NO_CONSTRAINT"
)
