// Package mapping defines the resolved mapping model: the validated and fully
// defaulted description of persistent classes consumed by DDL generators and
// entity lifecycle managers.
//
// Every value in this package is built once, when the registry resolves a
// class, and is treated as read-only afterwards. The model contains slices
// only, never maps, so resolving the same input twice yields deeply equal
// results.
package mapping

import (
	"github.com/stokaro/ormeta/core/platform"
)

// DescriptorKind tells which persistence role a class plays.
type DescriptorKind string

const (
	KindEntity           DescriptorKind = "entity"
	KindMappedSuperclass DescriptorKind = "mapped_superclass"
	KindEmbeddable       DescriptorKind = "embeddable"
)

// IDKind distinguishes single-column and embedded composite primary keys.
type IDKind string

const (
	IDSingle   IDKind = "single"
	IDEmbedded IDKind = "embedded"
)

// RelationshipKind is the relationship mapping of an attribute, if any.
type RelationshipKind string

const (
	RelationNone       RelationshipKind = ""
	RelationOneToOne   RelationshipKind = "one_to_one"
	RelationManyToOne  RelationshipKind = "many_to_one"
	RelationOneToMany  RelationshipKind = "one_to_many"
	RelationManyToMany RelationshipKind = "many_to_many"
)

// EntityDescriptor is the resolved mapping of one persistent class.
type EntityDescriptor struct {
	Name            string               `json:"name" yaml:"name"`
	Kind            DescriptorKind       `json:"kind" yaml:"kind"`
	Super           string               `json:"super,omitempty" yaml:"super,omitempty"`
	Table           *TableSpec           `json:"table,omitempty" yaml:"table,omitempty"` // nil unless Kind is KindEntity
	SecondaryTables []SecondaryTableSpec `json:"secondary_tables,omitempty" yaml:"secondary_tables,omitempty"`
	ID              *IDSpec              `json:"id,omitempty" yaml:"id,omitempty"`
	Listeners       []string             `json:"listeners,omitempty" yaml:"listeners,omitempty"`
	Attributes      []AttributeSpec      `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// TableSpec is a resolved table reference.
type TableSpec struct {
	Name              string                 `json:"name" yaml:"name"`
	Catalog           string                 `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Schema            string                 `json:"schema,omitempty" yaml:"schema,omitempty"`
	UniqueConstraints []UniqueConstraintSpec `json:"unique_constraints,omitempty" yaml:"unique_constraints,omitempty"`
	Indexes           []IndexSpec            `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Options           string                 `json:"options,omitempty" yaml:"options,omitempty"`
}

// QualifiedName renders catalog.schema.name quoted for the given dialect.
func (t TableSpec) QualifiedName(dialect string) string {
	return platform.QualifiedName(dialect, t.Catalog, t.Schema, t.Name)
}

// SecondaryTableSpec is a resolved secondary table joined to the primary table.
type SecondaryTableSpec struct {
	TableSpec     `yaml:",inline"`
	PKJoinColumns []JoinColumnSpec `json:"pk_join_columns" yaml:"pk_join_columns"`
	ForeignKey    ForeignKeySpec   `json:"foreign_key" yaml:"foreign_key"`
}

// IDSpec is the resolved primary key of an entity.
type IDSpec struct {
	Kind       IDKind       `json:"kind" yaml:"kind"`
	Member     string       `json:"member" yaml:"member"`
	DeclaredBy string       `json:"declared_by" yaml:"declared_by"`                   // class declaring the key; an ancestor when inherited
	Embeddable string       `json:"embeddable,omitempty" yaml:"embeddable,omitempty"` // set for IDEmbedded
	Columns    []ColumnSpec `json:"columns" yaml:"columns"`
}

// ColumnSpec is a resolved column.
type ColumnSpec struct {
	Name             string `json:"name" yaml:"name"`
	Table            string `json:"table" yaml:"table"`
	Type             string `json:"type,omitempty" yaml:"type,omitempty"` // declared member type
	Nullable         bool   `json:"nullable" yaml:"nullable"`
	Unique           bool   `json:"unique" yaml:"unique"`
	Insertable       bool   `json:"insertable" yaml:"insertable"`
	Updatable        bool   `json:"updatable" yaml:"updatable"`
	Length           int    `json:"length" yaml:"length"`
	Precision        int    `json:"precision" yaml:"precision"`
	Scale            int    `json:"scale" yaml:"scale"`
	ColumnDefinition string `json:"column_definition,omitempty" yaml:"column_definition,omitempty"`
	Options          string `json:"options,omitempty" yaml:"options,omitempty"`
}

// JoinColumnSpec is a resolved join column (relationship or primary key join).
type JoinColumnSpec struct {
	Name                 string         `json:"name" yaml:"name"`
	ReferencedColumnName string         `json:"referenced_column_name" yaml:"referenced_column_name"`
	Type                 string         `json:"type,omitempty" yaml:"type,omitempty"`
	Table                string         `json:"table,omitempty" yaml:"table,omitempty"`
	Nullable             bool           `json:"nullable" yaml:"nullable"`
	Unique               bool           `json:"unique" yaml:"unique"`
	Insertable           bool           `json:"insertable" yaml:"insertable"`
	Updatable            bool           `json:"updatable" yaml:"updatable"`
	ColumnDefinition     string         `json:"column_definition,omitempty" yaml:"column_definition,omitempty"`
	Options              string         `json:"options,omitempty" yaml:"options,omitempty"`
	ForeignKey           ForeignKeySpec `json:"foreign_key" yaml:"foreign_key"`
}

// ForeignKeySpec is a resolved foreign key constraint request.
type ForeignKeySpec struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Mode       string `json:"mode" yaml:"mode"`
	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
	Options    string `json:"options,omitempty" yaml:"options,omitempty"`
}

// UniqueConstraintSpec is a resolved table-level unique constraint.
type UniqueConstraintSpec struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	ColumnNames []string `json:"column_names" yaml:"column_names"`
	Options     string   `json:"options,omitempty" yaml:"options,omitempty"`
}

// IndexSpec is a resolved table index.
type IndexSpec struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	ColumnList string `json:"column_list" yaml:"column_list"`
	Unique     bool   `json:"unique" yaml:"unique"`
	Options    string `json:"options,omitempty" yaml:"options,omitempty"`
}

// AttributeSpec is the resolved mapping of one persistent member.
type AttributeSpec struct {
	Member       string           `json:"member" yaml:"member"`
	DeclaredBy   string           `json:"declared_by" yaml:"declared_by"`
	Accessor     bool             `json:"accessor,omitempty" yaml:"accessor,omitempty"`
	Type         string           `json:"type,omitempty" yaml:"type,omitempty"`
	ID           bool             `json:"id,omitempty" yaml:"id,omitempty"`
	Relationship RelationshipKind `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	TargetEntity string           `json:"target_entity,omitempty" yaml:"target_entity,omitempty"`
	MappedBy     string           `json:"mapped_by,omitempty" yaml:"mapped_by,omitempty"`
	Collection   bool             `json:"collection,omitempty" yaml:"collection,omitempty"` // element collection
	Embeddable   string           `json:"embeddable,omitempty" yaml:"embeddable,omitempty"` // embedded and embedded id members
	Column       *ColumnSpec      `json:"column,omitempty" yaml:"column,omitempty"`
	Columns      []ColumnSpec     `json:"columns,omitempty" yaml:"columns,omitempty"` // flattened embeddable columns
	JoinColumns  []JoinColumnSpec `json:"join_columns,omitempty" yaml:"join_columns,omitempty"`
	MapKey       *ColumnSpec      `json:"map_key,omitempty" yaml:"map_key,omitempty"`
}

// PrimaryKeyColumns returns the primary key columns in key order, or nil when
// the descriptor has no key.
func (d *EntityDescriptor) PrimaryKeyColumns() []ColumnSpec {
	if d.ID == nil {
		return nil
	}
	return d.ID.Columns
}

// Attribute returns the resolved attribute for the member name.
func (d *EntityDescriptor) Attribute(member string) (AttributeSpec, bool) {
	for _, a := range d.Attributes {
		if a.Member == member {
			return a, true
		}
	}
	return AttributeSpec{}, false
}

// BasicColumns returns the columns of non-relationship, non-collection
// attributes in attribute order, flattening embedded attributes. It is the
// column set an embeddable contributes when embedded or used as a key.
func (d *EntityDescriptor) BasicColumns() []ColumnSpec {
	var cols []ColumnSpec
	for _, a := range d.Attributes {
		switch {
		case a.Relationship != RelationNone, a.Collection:
			continue
		case a.Column != nil:
			cols = append(cols, *a.Column)
		default:
			cols = append(cols, a.Columns...)
		}
	}
	return cols
}

// OwnedJoinColumns returns the join columns of ManyToOne and OneToOne
// attributes in attribute order, flattening embedded attributes. These are
// the join columns an embeddable contributes to the embedding table.
func (d *EntityDescriptor) OwnedJoinColumns() []JoinColumnSpec {
	var cols []JoinColumnSpec
	for _, a := range d.Attributes {
		switch a.Relationship {
		case RelationManyToOne, RelationOneToOne, RelationNone:
			cols = append(cols, a.JoinColumns...)
		}
	}
	return cols
}
