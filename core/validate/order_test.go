package validate_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/annotation"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/validate"
)

func mapValue() []annotation.Annotation {
	return []annotation.Annotation{annotation.New(annotation.OneToMany), annotation.New(annotation.MapKeyColumn)}
}

func TestDependencies(t *testing.T) {
	c := qt.New(t)

	class := entity("Product").
		Extends("Base").
		Field("Key", "ProductKey", annotation.New(annotation.EmbeddedId)).
		Field("Images", "map[string]*Image", mapValue()...).
		Field("Covers", "map[string]Image", mapValue()...).
		Field("Related", "map[string]Item",
			annotation.New(annotation.ManyToMany).With("target_entity", "Product"),
			annotation.New(annotation.MapKeyColumn)).
		Field("Owner", "*Customer", annotation.New(annotation.ManyToOne)).
		Field("Labels", "map[string]Label", annotation.New(annotation.OneToMany)).
		Field("Address", "Address", annotation.New(annotation.Embedded), annotation.New(annotation.Transient))

	c.Assert(validate.Dependencies(class), qt.DeepEquals, []string{"Base", "ProductKey", "Image", "Product"})
}

func TestOrder_Levels(t *testing.T) {
	c := qt.New(t)

	classes := []*decl.Class{
		entity("Product").Field("Images", "map[string]Image", mapValue()...),
		entity("Customer").Extends("Base").Field("Key", "CustomerKey", annotation.New(annotation.EmbeddedId)),
		entity("Image"),
		decl.NewClass("CustomerKey", annotation.New(annotation.Embeddable)),
		decl.NewClass("Base", annotation.New(annotation.MappedSuperclass)).Extends("Root"),
		decl.NewClass("Root", annotation.New(annotation.MappedSuperclass)).Extends("Missing"),
		entity("Node").Field("Children", "map[string]*Node", mapValue()...),
	}

	levels, err := validate.Order(classes)
	c.Assert(err, qt.IsNil)
	c.Assert(levels, qt.DeepEquals, [][]string{
		{"CustomerKey", "Image", "Node", "Root"},
		{"Base", "Product"},
		{"Customer"},
	})
}

func TestOrder_Cycle(t *testing.T) {
	tests := []struct {
		name    string
		classes []*decl.Class
		cycle   []string
	}{
		{
			name: "map values",
			classes: []*decl.Class{
				entity("A").Field("Bs", "map[string]B", mapValue()...),
				entity("B").Field("As", "map[string]A", mapValue()...),
			},
			cycle: []string{"A", "B", "A"},
		},
		{
			name: "through a supertype",
			classes: []*decl.Class{
				entity("Z"),
				entity("C").Extends("D"),
				decl.NewClass("D", annotation.New(annotation.MappedSuperclass)).
					Field("Es", "map[string]E", mapValue()...),
				entity("E").Extends("C"),
			},
			cycle: []string{"C", "D", "E", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			levels, err := validate.Order(tt.classes)
			c.Assert(levels, qt.IsNil)

			var cerr *validate.CyclicReferenceError
			c.Assert(errors.As(err, &cerr), qt.IsTrue)
			c.Assert(cerr.Cycle, qt.DeepEquals, tt.cycle)
		})
	}
}

func TestCyclicReferenceError(t *testing.T) {
	c := qt.New(t)

	err := &validate.CyclicReferenceError{Cycle: []string{"A", "B", "A"}}
	c.Assert(err, qt.ErrorMatches, "cyclic reference: A -> B -> A")
}
