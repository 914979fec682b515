package annotation

import (
	"fmt"
	"slices"
)

// AttributeDef describes one attribute of an annotation kind.
type AttributeDef struct {
	Name     string
	Type     ValueType
	Default  any  // default literal applied when the attribute is absent
	Required bool // no default; must be supplied
	Nested   Kind // kind of nested annotations for NestedValue / NestedListValue
}

// Schema is the static description of one annotation kind.
type Schema struct {
	Kind        Kind
	Targets     Target
	Cardinality Cardinality
	Attributes  []AttributeDef

	// Persistence marks Entity, MappedSuperclass and Embeddable.
	Persistence bool
	// PrimaryKey marks the primary-key-designating kinds (Id, EmbeddedId).
	PrimaryKey bool
	// Relationship marks entity relationship mappings.
	Relationship bool
	// ColumnLike marks kinds carrying column_definition and options.
	ColumnLike bool
}

// Attribute returns the definition of the named attribute.
func (s *Schema) Attribute(name string) (AttributeDef, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeDef{}, false
}

// AttributeNames returns the attribute names in declaration order.
func (s *Schema) AttributeNames() []string {
	names := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		names[i] = a.Name
	}
	return names
}

var (
	nameAttr              = AttributeDef{Name: "name", Type: StringValue, Default: ""}
	catalogAttr           = AttributeDef{Name: "catalog", Type: StringValue, Default: ""}
	schemaAttr            = AttributeDef{Name: "schema", Type: StringValue, Default: ""}
	optionsAttr           = AttributeDef{Name: "options", Type: StringValue, Default: ""}
	columnDefinitionAttr  = AttributeDef{Name: "column_definition", Type: StringValue, Default: ""}
	tableAttr             = AttributeDef{Name: "table", Type: StringValue, Default: ""}
	uniqueAttr            = AttributeDef{Name: "unique", Type: BoolValue, Default: false}
	insertableAttr        = AttributeDef{Name: "insertable", Type: BoolValue, Default: true}
	updatableAttr         = AttributeDef{Name: "updatable", Type: BoolValue, Default: true}
	lengthAttr            = AttributeDef{Name: "length", Type: IntValue, Default: 255}
	precisionAttr         = AttributeDef{Name: "precision", Type: IntValue, Default: 0}
	scaleAttr             = AttributeDef{Name: "scale", Type: IntValue, Default: 0}
	referencedAttr        = AttributeDef{Name: "referenced_column_name", Type: StringValue, Default: ""}
	foreignKeyAttr        = AttributeDef{Name: "foreign_key", Type: NestedValue, Nested: ForeignKey}
	uniqueConstraintsAttr = AttributeDef{Name: "unique_constraints", Type: NestedListValue, Nested: UniqueConstraint}
	indexesAttr           = AttributeDef{Name: "indexes", Type: NestedListValue, Nested: Index}
	targetEntityAttr      = AttributeDef{Name: "target_entity", Type: StringValue, Default: ""}
	mappedByAttr          = AttributeDef{Name: "mapped_by", Type: StringValue, Default: ""}
	optionalAttr          = AttributeDef{Name: "optional", Type: BoolValue, Default: true}
	orphanRemovalAttr     = AttributeDef{Name: "orphan_removal", Type: BoolValue, Default: false}
)

func fetchAttr(def string) AttributeDef {
	return AttributeDef{Name: "fetch", Type: StringValue, Default: def}
}

var schemas = []*Schema{
	{Kind: Entity, Targets: TargetType, Persistence: true, Attributes: []AttributeDef{nameAttr}},
	{Kind: MappedSuperclass, Targets: TargetType, Persistence: true},
	{Kind: Embeddable, Targets: TargetType, Persistence: true},
	{
		Kind:    Table,
		Targets: TargetType,
		Attributes: []AttributeDef{
			nameAttr, catalogAttr, schemaAttr, uniqueConstraintsAttr, indexesAttr, optionsAttr,
		},
	},
	{
		Kind:        SecondaryTable,
		Targets:     TargetType,
		Cardinality: Repeatable,
		Attributes: []AttributeDef{
			{Name: "name", Type: StringValue, Required: true},
			catalogAttr,
			schemaAttr,
			{Name: "pk_join_columns", Type: NestedListValue, Nested: PrimaryKeyJoinColumn},
			foreignKeyAttr,
			uniqueConstraintsAttr,
			indexesAttr,
			optionsAttr,
		},
	},
	{
		Kind:        PrimaryKeyJoinColumn,
		Targets:     TargetType | TargetMember,
		Cardinality: Repeatable,
		ColumnLike:  true,
		Attributes: []AttributeDef{
			nameAttr, referencedAttr, columnDefinitionAttr, optionsAttr, foreignKeyAttr,
		},
	},
	{
		Kind:    EntityListeners,
		Targets: TargetType,
		Attributes: []AttributeDef{
			{Name: "value", Type: StringListValue, Required: true},
		},
	},
	{Kind: Id, Targets: TargetMember, PrimaryKey: true},
	{Kind: EmbeddedId, Targets: TargetMember, PrimaryKey: true},
	{
		Kind:       Column,
		Targets:    TargetMember,
		ColumnLike: true,
		Attributes: []AttributeDef{
			nameAttr,
			uniqueAttr,
			{Name: "nullable", Type: BoolValue, Default: true},
			insertableAttr,
			updatableAttr,
			columnDefinitionAttr,
			optionsAttr,
			tableAttr,
			lengthAttr,
			precisionAttr,
			scaleAttr,
		},
	},
	{
		Kind:        JoinColumn,
		Targets:     TargetMember,
		Cardinality: Repeatable,
		ColumnLike:  true,
		Attributes: []AttributeDef{
			nameAttr,
			referencedAttr,
			uniqueAttr,
			{Name: "nullable", Type: BoolValue, Default: true},
			insertableAttr,
			updatableAttr,
			columnDefinitionAttr,
			optionsAttr,
			tableAttr,
			foreignKeyAttr,
		},
	},
	{
		Kind:       MapKeyColumn,
		Targets:    TargetMember,
		ColumnLike: true,
		Attributes: []AttributeDef{
			nameAttr,
			uniqueAttr,
			{Name: "nullable", Type: BoolValue, Default: false},
			insertableAttr,
			updatableAttr,
			columnDefinitionAttr,
			optionsAttr,
			tableAttr,
			lengthAttr,
			precisionAttr,
			scaleAttr,
		},
	},
	{
		Kind:         OneToOne,
		Targets:      TargetMember,
		Relationship: true,
		Attributes:   []AttributeDef{targetEntityAttr, fetchAttr("EAGER"), optionalAttr, mappedByAttr, orphanRemovalAttr},
	},
	{
		Kind:         ManyToOne,
		Targets:      TargetMember,
		Relationship: true,
		Attributes:   []AttributeDef{targetEntityAttr, fetchAttr("EAGER"), optionalAttr},
	},
	{
		Kind:         OneToMany,
		Targets:      TargetMember,
		Relationship: true,
		Attributes:   []AttributeDef{targetEntityAttr, fetchAttr("LAZY"), mappedByAttr, orphanRemovalAttr},
	},
	{
		Kind:         ManyToMany,
		Targets:      TargetMember,
		Relationship: true,
		Attributes:   []AttributeDef{targetEntityAttr, fetchAttr("LAZY"), mappedByAttr},
	},
	{
		Kind:       ElementCollection,
		Targets:    TargetMember,
		Attributes: []AttributeDef{{Name: "target_class", Type: StringValue, Default: ""}, fetchAttr("LAZY")},
	},
	{Kind: Embedded, Targets: TargetMember},
	{Kind: Transient, Targets: TargetMember},
	{
		Kind: ForeignKey,
		Attributes: []AttributeDef{
			nameAttr,
			{Name: "value", Type: StringValue, Default: ConstraintProviderDefault},
			{Name: "foreign_key_definition", Type: StringValue, Default: ""},
			optionsAttr,
		},
	},
	{
		Kind: UniqueConstraint,
		Attributes: []AttributeDef{
			nameAttr,
			{Name: "column_names", Type: StringListValue, Required: true},
			optionsAttr,
		},
	},
	{
		Kind: Index,
		Attributes: []AttributeDef{
			nameAttr,
			{Name: "column_list", Type: StringValue, Required: true},
			uniqueAttr,
			optionsAttr,
		},
	},
}

var (
	byKind      = make(map[Kind]*Schema, len(schemas))
	byDirective = make(map[string]*Schema, len(schemas))
)

func init() {
	for _, s := range schemas {
		byKind[s.Kind] = s
		byDirective[s.Kind.Directive()] = s
	}
}

// Lookup returns the schema of the given annotation kind.
func Lookup(kind Kind) (*Schema, error) {
	s, ok := byKind[kind]
	if !ok {
		return nil, &SchemaError{Kind: string(kind)}
	}
	return s, nil
}

// LookupDirective returns the schema of the kind spelled as a snake_case
// directive name, e.g. "map_key_column".
func LookupDirective(directive string) (*Schema, error) {
	s, ok := byDirective[directive]
	if !ok {
		return nil, &SchemaError{Kind: directive}
	}
	return s, nil
}

// Kinds returns every known annotation kind in schema declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(schemas))
	for i, s := range schemas {
		kinds[i] = s.Kind
	}
	return kinds
}

// WithDefaults returns a copy of a in which every absent attribute carries its
// default literal. Nested annotations are defaulted recursively. Required
// attributes without a value are left absent.
func (s *Schema) WithDefaults(a Annotation) Annotation {
	out := Annotation{Kind: a.Kind, Attrs: make(map[string]any, len(s.Attributes))}
	for _, def := range s.Attributes {
		v, ok := a.Attrs[def.Name]
		switch def.Type {
		case NestedValue:
			nested, _ := v.(Annotation)
			if !ok {
				nested = New(def.Nested)
			}
			out.Attrs[def.Name] = defaultNested(def.Nested, nested)
		case NestedListValue:
			list, _ := v.([]Annotation)
			resolved := make([]Annotation, len(list))
			for i, n := range list {
				resolved[i] = defaultNested(def.Nested, n)
			}
			out.Attrs[def.Name] = resolved
		case StringListValue:
			if list, isList := v.([]string); isList {
				out.Attrs[def.Name] = slices.Clone(list)
			} else if ok {
				out.Attrs[def.Name] = v
			} else if !def.Required {
				out.Attrs[def.Name] = []string{}
			}
		default:
			if ok {
				out.Attrs[def.Name] = v
			} else if !def.Required {
				out.Attrs[def.Name] = def.Default
			}
		}
	}
	return out
}

func defaultNested(kind Kind, a Annotation) Annotation {
	ns, err := Lookup(kind)
	if err != nil {
		return a
	}
	if a.Kind == "" {
		a.Kind = kind
	}
	return ns.WithDefaults(a)
}

// Check validates the attribute bag of a against the schema and returns one
// message per problem: unknown attributes, values of the wrong type and
// missing required attributes. Nested annotations are checked recursively.
func (s *Schema) Check(a Annotation) []string {
	var problems []string
	for _, name := range a.sortedNames() {
		def, ok := s.Attribute(name)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown attribute %q", s.Kind, name))
			continue
		}
		problems = append(problems, s.checkValue(def, a.Attrs[name])...)
	}
	for _, def := range s.Attributes {
		if _, ok := a.Attrs[def.Name]; def.Required && !ok {
			problems = append(problems, fmt.Sprintf("%s: attribute %q is required", s.Kind, def.Name))
		}
	}
	return problems
}

func (s *Schema) checkValue(def AttributeDef, v any) []string {
	wrong := func() []string {
		return []string{fmt.Sprintf("%s: attribute %q must be %s, got %T", s.Kind, def.Name, def.Type, v)}
	}
	switch def.Type {
	case StringValue:
		if _, ok := v.(string); !ok {
			return wrong()
		}
	case BoolValue:
		if _, ok := v.(bool); !ok {
			return wrong()
		}
	case IntValue:
		if _, ok := v.(int); !ok {
			return wrong()
		}
	case StringListValue:
		if _, ok := v.([]string); !ok {
			return wrong()
		}
	case NestedValue:
		n, ok := v.(Annotation)
		if !ok {
			return wrong()
		}
		return checkNested(def.Nested, n)
	case NestedListValue:
		list, ok := v.([]Annotation)
		if !ok {
			return wrong()
		}
		var problems []string
		for _, n := range list {
			problems = append(problems, checkNested(def.Nested, n)...)
		}
		return problems
	}
	return nil
}

func checkNested(kind Kind, a Annotation) []string {
	if a.Kind != "" && a.Kind != kind {
		return []string{fmt.Sprintf("expected nested %s, got %s", kind, a.Kind)}
	}
	ns, err := Lookup(kind)
	if err != nil {
		return []string{err.Error()}
	}
	return ns.Check(a)
}
