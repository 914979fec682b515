package parseutils_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/goentity/internal/parseutils"
)

func TestParseKeyValueComment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "quoted values",
			input:    `name="CUST_DETAIL" schema="sales"`,
			expected: map[string]string{"name": "CUST_DETAIL", "schema": "sales"},
		},
		{
			name:     "spaces and escapes in quotes",
			input:    `column_definition="VARCHAR(80) DEFAULT \"n/a\""`,
			expected: map[string]string{"column_definition": `VARCHAR(80) DEFAULT "n/a"`},
		},
		{
			name:     "bare values and flags",
			input:    `length=80 nullable=false unique`,
			expected: map[string]string{"length": "80", "nullable": "false", "unique": "true"},
		},
		{
			name:     "dotted keys",
			input:    `pk_join_columns.0.name="CUST_ID" foreign_key.name="FK_X"`,
			expected: map[string]string{"pk_join_columns.0.name": "CUST_ID", "foreign_key.name": "FK_X"},
		},
		{
			name:     "empty",
			input:    "   ",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(parseutils.ParseKeyValueComment(tt.input), qt.DeepEquals, tt.expected)
		})
	}
}

func TestParseDirective(t *testing.T) {
	c := qt.New(t)

	name, attrs, ok := parseutils.ParseDirective(`//orm:map_key_column name="IMG"`)
	c.Assert(ok, qt.IsTrue)
	c.Assert(name, qt.Equals, "map_key_column")
	c.Assert(attrs, qt.DeepEquals, map[string]string{"name": "IMG"})

	name, attrs, ok = parseutils.ParseDirective("//orm:entity")
	c.Assert(ok, qt.IsTrue)
	c.Assert(name, qt.Equals, "entity")
	c.Assert(attrs, qt.HasLen, 0)

	_, _, ok = parseutils.ParseDirective("// regular comment")
	c.Assert(ok, qt.IsFalse)

	_, _, ok = parseutils.ParseDirective("//orm:")
	c.Assert(ok, qt.IsFalse)
}
