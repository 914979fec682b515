package mappingfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/mappingfile"
)

const customerYAML = `
version: "1"
classes:
  - name: Customer
    super: Audited
    annotations:
      - kind: Entity
      - kind: SecondaryTable
        attributes:
          name: CUST_DETAIL
          foreign_key: {name: FK_CUST_DETAIL}
          pk_join_columns:
            - name: CUST_ID
              referenced_column_name: ID
      - kind: entity_listeners
        attributes:
          value: [AuditListener]
    members:
      - name: Name
        type: string
        annotations:
          - kind: Column
            attributes: {length: 80, nullable: false}
      - name: Images
        type: map[string]Image
        annotations:
          - kind: one_to_many
          - kind: map_key_column
      - name: Bio
        element: accessor
        type: string
`

func TestParse(t *testing.T) {
	c := qt.New(t)

	classes, err := mappingfile.Parse([]byte(customerYAML))
	c.Assert(err, qt.IsNil)
	c.Assert(classes, qt.HasLen, 1)

	customer := classes[0]
	c.Assert(customer.Name, qt.Equals, "Customer")
	c.Assert(customer.Super, qt.Equals, "Audited")
	c.Assert(customer.Annotations, qt.DeepEquals, []annotation.Annotation{
		annotation.New(annotation.Entity),
		annotation.New(annotation.SecondaryTable).
			With("name", "CUST_DETAIL").
			With("foreign_key", annotation.New(annotation.ForeignKey).With("name", "FK_CUST_DETAIL")).
			With("pk_join_columns", []annotation.Annotation{
				annotation.New(annotation.PrimaryKeyJoinColumn).
					With("name", "CUST_ID").
					With("referenced_column_name", "ID"),
			}),
		annotation.New(annotation.EntityListeners).With("value", []string{"AuditListener"}),
	})

	c.Assert(customer.Members, qt.HasLen, 3)
	name := customer.Members[0]
	col, ok := name.Find(annotation.Column)
	c.Assert(ok, qt.IsTrue)
	c.Assert(col.Int("length"), qt.Equals, 80)
	c.Assert(col.Bool("nullable"), qt.IsFalse)
	c.Assert(customer.Members[1].Has(annotation.MapKeyColumn), qt.IsTrue)
	c.Assert(customer.Members[2].Element, qt.Equals, decl.ElementAccessor)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		pattern string
	}{
		{
			name:    "unknown kind",
			yaml:    "classes:\n  - name: Customer\n    annotations:\n      - kind: Lob\n",
			pattern: `class Customer: unknown annotation kind "Lob"`,
		},
		{
			name:    "bad attribute",
			yaml:    "classes:\n  - name: Customer\n    members:\n      - name: Name\n        annotations:\n          - kind: Column\n            attributes: {length: long}\n",
			pattern: `class Customer: member Name: Column: attribute "length" \(value long\): expected an integer`,
		},
		{
			name:    "type element",
			yaml:    "classes:\n  - name: Customer\n    members:\n      - name: Name\n        element: type\n",
			pattern: `class Customer: member Name: invalid element "type"`,
		},
		{
			name:    "missing class name",
			yaml:    "classes:\n  - super: Base\n",
			pattern: `classes\[0\]: name is required`,
		},
		{
			name:    "version",
			yaml:    "version: \"2\"\n",
			pattern: `unsupported mapping file version "2"`,
		},
		{
			name:    "malformed",
			yaml:    "classes: [",
			pattern: `(?s)failed to parse mapping YAML: .*`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			_, err := mappingfile.Parse([]byte(tt.yaml))
			c.Assert(err, qt.ErrorMatches, tt.pattern)
		})
	}
}

func TestParse_UnknownKindIsSchemaError(t *testing.T) {
	c := qt.New(t)

	_, err := mappingfile.Parse([]byte("classes:\n  - name: Customer\n    annotations:\n      - kind: Lob\n"))
	var schemaErr *annotation.SchemaError
	c.Assert(errors.As(err, &schemaErr), qt.IsTrue)
}

func TestLoad(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), "orm.yaml")
	c.Assert(os.WriteFile(path, []byte(customerYAML), 0600), qt.IsNil)

	classes, err := mappingfile.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(classes, qt.HasLen, 1)
	c.Assert(classes[0].Pos.File, qt.Equals, path)

	_, err = mappingfile.Load(filepath.Join(c.TempDir(), "missing.yaml"))
	c.Assert(err, qt.ErrorMatches, `failed to read mapping file .*`)
}
