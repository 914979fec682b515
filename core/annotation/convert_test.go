package annotation_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/annotation"
)

func TestFromMap_DirectiveStrings(t *testing.T) {
	c := qt.New(t)

	a, err := annotation.FromMap(annotation.MapKeyColumn, map[string]any{
		"name":     "IMG_KEY",
		"unique":   "true",
		"length":   "64",
		"nullable": "false",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(a.Kind, qt.Equals, annotation.MapKeyColumn)
	c.Assert(a.String("name"), qt.Equals, "IMG_KEY")
	c.Assert(a.Bool("unique"), qt.IsTrue)
	c.Assert(a.Int("length"), qt.Equals, 64)
	c.Assert(a.IsSet("nullable"), qt.IsTrue)
	c.Assert(a.IsSet("precision"), qt.IsFalse)
}

func TestFromMap_DottedNested(t *testing.T) {
	c := qt.New(t)

	a, err := annotation.FromMap(annotation.SecondaryTable, map[string]any{
		"name":                                     "CUST_DETAIL",
		"foreign_key.name":                         "FK_CUST_DETAIL",
		"foreign_key.value":                        "CONSTRAINT",
		"pk_join_columns.1.name":                   "CUST_TYPE",
		"pk_join_columns.0.name":                   "CUST_ID",
		"pk_join_columns.0.referenced_column_name": "ID",
	})
	c.Assert(err, qt.IsNil)

	fk, ok := a.Nested("foreign_key")
	c.Assert(ok, qt.IsTrue)
	c.Assert(fk.Kind, qt.Equals, annotation.ForeignKey)
	c.Assert(fk.String("name"), qt.Equals, "FK_CUST_DETAIL")
	c.Assert(fk.String("value"), qt.Equals, "CONSTRAINT")

	cols := a.NestedList("pk_join_columns")
	c.Assert(cols, qt.HasLen, 2)
	c.Assert(cols[0].String("name"), qt.Equals, "CUST_ID")
	c.Assert(cols[0].String("referenced_column_name"), qt.Equals, "ID")
	c.Assert(cols[1].String("name"), qt.Equals, "CUST_TYPE")
}

func TestFromMap_DecodedYAMLShapes(t *testing.T) {
	c := qt.New(t)

	a, err := annotation.FromMap(annotation.Table, map[string]any{
		"name": "CUSTOMER",
		"unique_constraints": []any{
			map[string]any{"name": "UQ_EMAIL", "column_names": []any{"EMAIL"}},
		},
		"indexes": []any{
			map[string]any{"column_list": "NAME, EMAIL", "unique": false},
		},
	})
	c.Assert(err, qt.IsNil)

	uqs := a.NestedList("unique_constraints")
	c.Assert(uqs, qt.HasLen, 1)
	c.Assert(uqs[0].Strings("column_names"), qt.DeepEquals, []string{"EMAIL"})

	idx := a.NestedList("indexes")
	c.Assert(idx, qt.HasLen, 1)
	c.Assert(idx[0].String("column_list"), qt.Equals, "NAME, EMAIL")
}

func TestFromMap_Shorthands(t *testing.T) {
	c := qt.New(t)

	a, err := annotation.FromMap(annotation.EntityListeners, map[string]any{
		"value": "AuditListener, MetricsListener",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(a.Strings("value"), qt.DeepEquals, []string{"AuditListener", "MetricsListener"})

	j, err := annotation.FromMap(annotation.JoinColumn, map[string]any{"foreign_key": "FK_OWNER"})
	c.Assert(err, qt.IsNil)
	fk, ok := j.Nested("foreign_key")
	c.Assert(ok, qt.IsTrue)
	c.Assert(fk.String("name"), qt.Equals, "FK_OWNER")
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name     string
		kind     annotation.Kind
		values   map[string]any
		expected string
	}{
		{
			name:     "unknown attribute",
			kind:     annotation.Column,
			values:   map[string]any{"size": "10"},
			expected: `Column: attribute "size" \(value 10\): unknown attribute`,
		},
		{
			name:     "bad boolean",
			kind:     annotation.Column,
			values:   map[string]any{"nullable": "maybe"},
			expected: `Column: attribute "nullable" \(value maybe\): expected a boolean`,
		},
		{
			name:     "bad integer",
			kind:     annotation.Column,
			values:   map[string]any{"length": 2.5},
			expected: `Column: attribute "length" \(value 2.5\): expected an integer`,
		},
		{
			name:     "bad position",
			kind:     annotation.SecondaryTable,
			values:   map[string]any{"pk_join_columns.first.name": "X"},
			expected: `SecondaryTable: attribute "pk_join_columns.first" .*expected a list position`,
		},
		{
			name:     "conflicting keys",
			kind:     annotation.SecondaryTable,
			values:   map[string]any{"foreign_key": "FK", "foreign_key.name": "FK2"},
			expected: `SecondaryTable: attribute "foreign_key.name" .*conflicting keys`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			_, err := annotation.FromMap(tt.kind, tt.values)
			c.Assert(err, qt.ErrorMatches, tt.expected)

			var attrErr *annotation.AttributeError
			c.Assert(errors.As(err, &attrErr), qt.IsTrue)
		})
	}
}

func TestFromMap_UnknownKind(t *testing.T) {
	c := qt.New(t)

	_, err := annotation.FromMap("Lob", nil)
	var schemaErr *annotation.SchemaError
	c.Assert(errors.As(err, &schemaErr), qt.IsTrue)
}

func TestAnnotation_WithCopies(t *testing.T) {
	c := qt.New(t)

	base := annotation.New(annotation.Column).With("name", "A")
	changed := base.With("name", "B")

	c.Assert(base.String("name"), qt.Equals, "A")
	c.Assert(changed.String("name"), qt.Equals, "B")
}
