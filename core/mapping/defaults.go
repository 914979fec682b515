package mapping

import (
	"github.com/stokaro/ormeta/config"
	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
)

// KeySuffix is appended to the relationship field name when a map key
// column name is synthesized.
const KeySuffix = "KEY"

// DefaultReferencedColumn is assumed for relationship join columns that do
// not name the referenced column.
const DefaultReferencedColumn = "ID"

// Defaulter applies the per-attribute defaults of the attribute schema to raw
// annotations. It is pure: the same input always yields the same output.
// A Defaulter must not be shared between goroutines (see Namer).
type Defaulter struct {
	opts  *config.ResolveOptions
	namer Namer
}

// NewDefaulter returns a defaulter for the options; nil means defaults.
func NewDefaulter(opts *config.ResolveOptions) *Defaulter {
	if opts == nil {
		opts = config.DefaultResolveOptions()
	}
	return &Defaulter{opts: opts, namer: NewNamer(opts.IdentifierCase)}
}

// Namer returns the identifier namer in use.
func (d *Defaulter) Namer() Namer {
	return d.namer
}

func withDefaults(kind annotation.Kind, raw annotation.Annotation) annotation.Annotation {
	s, err := annotation.Lookup(kind)
	if err != nil {
		// kinds used here are all declared in the schema
		panic(err)
	}
	if raw.Kind == "" {
		raw.Kind = kind
	}
	return s.WithDefaults(raw)
}

// PrimaryTable resolves the primary table of an entity. table is the raw
// Table annotation, or nil when the entity declares none; entityName is the
// Entity name attribute, or empty to use the class name.
func (d *Defaulter) PrimaryTable(className, entityName string, table *annotation.Annotation) TableSpec {
	raw := annotation.New(annotation.Table)
	if table != nil {
		raw = *table
	}
	a := withDefaults(annotation.Table, raw)

	name := a.String("name")
	if name == "" {
		if entityName != "" {
			name = d.namer.Identifier(entityName)
		} else {
			name = d.namer.Identifier(className)
		}
	}
	return d.tableSpec(a, name)
}

func (d *Defaulter) tableSpec(a annotation.Annotation, name string) TableSpec {
	spec := TableSpec{
		Name:    name,
		Catalog: a.String("catalog"),
		Schema:  a.String("schema"),
		Options: a.String("options"),
	}
	if spec.Catalog == "" {
		spec.Catalog = d.opts.DefaultCatalog
	}
	if spec.Schema == "" {
		spec.Schema = d.opts.DefaultSchema
	}
	for _, uc := range a.NestedList("unique_constraints") {
		spec.UniqueConstraints = append(spec.UniqueConstraints, UniqueConstraintSpec{
			Name:        uc.String("name"),
			ColumnNames: uc.Strings("column_names"),
			Options:     uc.String("options"),
		})
	}
	for _, idx := range a.NestedList("indexes") {
		spec.Indexes = append(spec.Indexes, IndexSpec{
			Name:       idx.String("name"),
			ColumnList: idx.String("column_list"),
			Unique:     idx.Bool("unique"),
			Options:    idx.String("options"),
		})
	}
	return spec
}

// ForeignKey resolves a nested ForeignKey annotation.
func (d *Defaulter) ForeignKey(raw annotation.Annotation) ForeignKeySpec {
	a := withDefaults(annotation.ForeignKey, raw)
	return ForeignKeySpec{
		Name:       a.String("name"),
		Mode:       a.String("value"),
		Definition: a.String("foreign_key_definition"),
		Options:    a.String("options"),
	}
}

// SecondaryTable resolves a SecondaryTable annotation against the primary key
// columns of the owning entity.
//
// Without pk_join_columns the join columns mirror the primary key columns:
// same names, same types, same order. Declared join columns default a missing
// referenced_column_name to the primary key column at the same position and a
// missing name to the referenced column name.
//
// When the table and a join column both declare a foreign key, the configured
// ForeignKeyPrecedence decides; by default the join column wins.
func (d *Defaulter) SecondaryTable(raw annotation.Annotation, pk []ColumnSpec) SecondaryTableSpec {
	a := withDefaults(annotation.SecondaryTable, raw)
	spec := SecondaryTableSpec{TableSpec: d.tableSpec(a, a.String("name"))}

	tableFK, _ := a.Nested("foreign_key")
	spec.ForeignKey = d.ForeignKey(tableFK)
	tableFKDeclared := raw.IsSet("foreign_key")

	declared := raw.NestedList("pk_join_columns")
	if len(declared) == 0 {
		for _, col := range pk {
			spec.PKJoinColumns = append(spec.PKJoinColumns, JoinColumnSpec{
				Name:                 col.Name,
				ReferencedColumnName: col.Name,
				Type:                 col.Type,
				Table:                spec.Name,
				Insertable:           true,
				Updatable:            true,
				ForeignKey:           spec.ForeignKey,
			})
		}
		return spec
	}

	for i, rawCol := range declared {
		col := withDefaults(annotation.PrimaryKeyJoinColumn, rawCol)

		ref := col.String("referenced_column_name")
		var refCol *ColumnSpec
		switch {
		case ref == "" && i < len(pk):
			refCol = &pk[i]
			ref = refCol.Name
		case ref != "":
			refCol = findColumn(pk, ref)
		}

		name := col.String("name")
		if name == "" {
			name = ref
		}

		join := JoinColumnSpec{
			Name:                 name,
			ReferencedColumnName: ref,
			Table:                spec.Name,
			Insertable:           true,
			Updatable:            true,
			ColumnDefinition:     col.String("column_definition"),
			Options:              col.String("options"),
			ForeignKey:           spec.ForeignKey,
		}
		if refCol != nil {
			join.Type = refCol.Type
		}

		colFK, _ := col.Nested("foreign_key")
		if rawCol.IsSet("foreign_key") {
			if d.opts.ForeignKeyPrecedence != config.ForeignKeyTable || !tableFKDeclared {
				join.ForeignKey = d.ForeignKey(colFK)
			}
		}
		spec.PKJoinColumns = append(spec.PKJoinColumns, join)
	}
	return spec
}

func findColumn(cols []ColumnSpec, name string) *ColumnSpec {
	for i := range cols {
		if cols[i].Name == name {
			return &cols[i]
		}
	}
	return nil
}

// Column resolves the column of a basic member. column is the raw Column
// annotation, or nil; table is the resolved primary table name used when the
// annotation does not name a table.
func (d *Defaulter) Column(member decl.Member, column *annotation.Annotation, table string) ColumnSpec {
	raw := annotation.New(annotation.Column)
	if column != nil {
		raw = *column
	}
	a := withDefaults(annotation.Column, raw)
	spec := d.columnSpec(a, member)
	if spec.Name == "" {
		spec.Name = d.namer.Identifier(member.Name)
	}
	if spec.Table == "" {
		spec.Table = table
	}
	return spec
}

// MapKeyColumn resolves the map key column of a map-valued association.
// The name defaults to <relationship-field>_KEY; table is the resolved
// default table (collection, join or target table) used when the annotation
// does not name one.
func (d *Defaulter) MapKeyColumn(member decl.Member, column annotation.Annotation, table string) ColumnSpec {
	a := withDefaults(annotation.MapKeyColumn, column)
	spec := d.columnSpec(a, member)
	spec.Type = decl.MapKeyType(member.Type)
	if spec.Name == "" {
		spec.Name = d.namer.Identifier(member.Name, KeySuffix)
	}
	if spec.Table == "" {
		spec.Table = table
	}
	return spec
}

func (d *Defaulter) columnSpec(a annotation.Annotation, member decl.Member) ColumnSpec {
	return ColumnSpec{
		Name:             a.String("name"),
		Table:            a.String("table"),
		Type:             member.Type,
		Nullable:         a.Bool("nullable"),
		Unique:           a.Bool("unique"),
		Insertable:       a.Bool("insertable"),
		Updatable:        a.Bool("updatable"),
		Length:           a.Int("length"),
		Precision:        a.Int("precision"),
		Scale:            a.Int("scale"),
		ColumnDefinition: a.String("column_definition"),
		Options:          a.String("options"),
	}
}

// JoinColumns resolves the relationship join columns of a member, keeping
// their declaration order. A missing referenced column defaults to ID and a
// missing name to <field>_<referenced>.
func (d *Defaulter) JoinColumns(member decl.Member, columns []annotation.Annotation, table string) []JoinColumnSpec {
	var specs []JoinColumnSpec
	for _, raw := range columns {
		a := withDefaults(annotation.JoinColumn, raw)
		ref := a.String("referenced_column_name")
		if ref == "" {
			ref = DefaultReferencedColumn
		}
		name := a.String("name")
		if name == "" {
			name = d.namer.Identifier(member.Name, ref)
		}
		colTable := a.String("table")
		if colTable == "" {
			colTable = table
		}
		fk, _ := a.Nested("foreign_key")
		specs = append(specs, JoinColumnSpec{
			Name:                 name,
			ReferencedColumnName: ref,
			Table:                colTable,
			Nullable:             a.Bool("nullable"),
			Unique:               a.Bool("unique"),
			Insertable:           a.Bool("insertable"),
			Updatable:            a.Bool("updatable"),
			ColumnDefinition:     a.String("column_definition"),
			Options:              a.String("options"),
			ForeignKey:           d.ForeignKey(fk),
		})
	}
	return specs
}

// CollectionTable is the default table of an element collection:
// <owner-table>_<field>.
func (d *Defaulter) CollectionTable(ownerTable, member string) string {
	return d.namer.Identifier(ownerTable, member)
}

// JoinTable is the default join table of an association: <owner-table>_<target-table>.
func (d *Defaulter) JoinTable(ownerTable, targetTable string) string {
	return d.namer.Identifier(ownerTable, targetTable)
}
