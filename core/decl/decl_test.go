package decl_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
)

func TestElementTypeName(t *testing.T) {
	tests := []struct {
		typ      string
		expected string
	}{
		{typ: "int64", expected: "int64"},
		{typ: "*CustomerKey", expected: "CustomerKey"},
		{typ: "[]Order", expected: "Order"},
		{typ: "[4]Order", expected: "Order"},
		{typ: "map[string]Image", expected: "Image"},
		{typ: "map[string]*img.Image", expected: "Image"},
		{typ: "map[[2]int][]*Image", expected: "Image"},
		{typ: "map[string", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(decl.ElementTypeName(tt.typ), qt.Equals, tt.expected)
		})
	}
}

func TestIsMap(t *testing.T) {
	c := qt.New(t)

	c.Assert(decl.IsMap("map[string]Image"), qt.IsTrue)
	c.Assert(decl.IsMap("*map[string]Image"), qt.IsTrue)
	c.Assert(decl.IsMap("[]Image"), qt.IsFalse)
	c.Assert(decl.IsMap("Image"), qt.IsFalse)
}

func TestClassBuilder(t *testing.T) {
	c := qt.New(t)

	class := decl.NewClass("Customer", annotation.New(annotation.Entity)).
		Extends("BaseEntity").
		Field("Name", "string", annotation.New(annotation.Column).With("length", 80)).
		Accessor("Email", "string")

	c.Assert(class.Name, qt.Equals, "Customer")
	c.Assert(class.Super, qt.Equals, "BaseEntity")
	c.Assert(class.Has(annotation.Entity), qt.IsTrue)
	c.Assert(class.Has(annotation.Embeddable), qt.IsFalse)
	c.Assert(class.Members, qt.HasLen, 2)

	name, ok := class.Member("Name")
	c.Assert(ok, qt.IsTrue)
	c.Assert(name.Element, qt.Equals, decl.ElementField)
	col, ok := name.Find(annotation.Column)
	c.Assert(ok, qt.IsTrue)
	c.Assert(col.Int("length"), qt.Equals, 80)

	email, ok := class.Member("Email")
	c.Assert(ok, qt.IsTrue)
	c.Assert(email.Element, qt.Equals, decl.ElementAccessor)
	c.Assert(email.Annotations, qt.HasLen, 0)

	_, ok = class.Member("Missing")
	c.Assert(ok, qt.IsFalse)
}

func TestParseElementKind(t *testing.T) {
	c := qt.New(t)

	for in, want := range map[string]decl.ElementKind{
		"type":     decl.ElementType,
		"":         decl.ElementField,
		"Field":    decl.ElementField,
		"accessor": decl.ElementAccessor,
		"method":   decl.ElementAccessor,
	} {
		got, err := decl.ParseElementKind(in)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want, qt.Commentf("input %q", in))
	}

	_, err := decl.ParseElementKind("package")
	c.Assert(err, qt.ErrorMatches, `unknown element kind "package"`)
}

func TestMapKeyType(t *testing.T) {
	c := qt.New(t)

	c.Assert(decl.MapKeyType("map[string]Image"), qt.Equals, "string")
	c.Assert(decl.MapKeyType("*map[[2]int]Image"), qt.Equals, "[2]int")
	c.Assert(decl.MapKeyType("[]Image"), qt.Equals, "")
}
