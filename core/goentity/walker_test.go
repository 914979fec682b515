package goentity_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/goentity"
	"github.com/stokaro/ormeta/core/goentity/testutil"
)

func TestParseDir(t *testing.T) {
	c := qt.New(t)

	dir := testutil.CreateTempGoDir(t, map[string]string{
		"customer.go": `package entities

//orm:entity
type Customer struct {
	//orm:id
	ID int64
}
`,
		"customer_accessors.go": `package entities

//orm:column name="MAIL"
func (c Customer) Email() string { return "" }

//orm:column
func (o *Orphan) Value() int { return 0 }
`,
		"sub/image.go": `package sub

//orm:entity
type Image struct {
	//orm:id
	ID int64
}
`,
		"customer_test.go": `package entities

//orm:entity
type Fixture struct{}
`,
		"vendor/lib/lib.go": `package lib

//orm:entity
type Vendored struct{}
`,
		"_draft/draft.go": `package draft

//orm:entity
type Draft struct{}
`,
	})

	classes, err := goentity.ParseDir(dir)
	c.Assert(err, qt.IsNil)

	var names []string
	for _, class := range classes {
		names = append(names, class.Name)
	}
	c.Assert(names, qt.DeepEquals, []string{"Customer", "Image"})

	customer := classes[0]
	c.Assert(customer.Members, qt.HasLen, 2)
	c.Assert(customer.Members[1].Name, qt.Equals, "Email")
	c.Assert(customer.Members[1].Type, qt.Equals, "string")
}

func TestParseDir_DuplicateClass(t *testing.T) {
	c := qt.New(t)

	dir := testutil.CreateTempGoDir(t, map[string]string{
		"a/customer.go": "package a\n\n//orm:entity\ntype Customer struct{}\n",
		"b/customer.go": "package b\n\n//orm:entity\ntype Customer struct{}\n",
	})

	_, err := goentity.ParseDir(dir)
	c.Assert(err, qt.ErrorMatches, `class Customer declared twice: .*a/customer.go:4 and .*b/customer.go:4`)
}

func TestParseDir_MissingRoot(t *testing.T) {
	c := qt.New(t)

	_, err := goentity.ParseDir(c.TempDir() + "/missing")
	c.Assert(err, qt.IsNotNil)
}
