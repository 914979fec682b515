package registry_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/goentity"
	"github.com/stokaro/ormeta/core/goentity/testutil"
	"github.com/stokaro/ormeta/core/mapping"
	"github.com/stokaro/ormeta/core/mappingfile"
	"github.com/stokaro/ormeta/registry"
)

const shopSource = `package shop

import "time"

//orm:mapped_superclass
type Audited struct {
	CreatedAt time.Time
}

//orm:embeddable
type CustomerKey struct {
	Region string

	//orm:column name="CUST_NO"
	Number int64
}

//orm:entity
type Image struct {
	//orm:id
	ID int64

	URL string
}

//orm:entity
//orm:secondary_table name="CUST_DETAIL"
//orm:entity_listeners value="AuditListener"
type Customer struct {
	Audited

	//orm:embedded_id
	Key CustomerKey

	//orm:column length=80
	Name string

	//orm:one_to_many
	//orm:map_key_column
	Images map[string]*Image
}

//orm:column table="CUST_DETAIL"
func (c *Customer) Bio() string { return "" }
`

const shopYAML = `
version: "1"
classes:
  - name: Audited
    annotations:
      - kind: MappedSuperclass
    members:
      - name: CreatedAt
        type: time.Time
  - name: CustomerKey
    annotations:
      - kind: Embeddable
    members:
      - name: Region
        type: string
      - name: Number
        type: int64
        annotations:
          - kind: Column
            attributes: {name: CUST_NO}
  - name: Image
    annotations:
      - kind: Entity
    members:
      - name: ID
        type: int64
        annotations:
          - kind: Id
      - name: URL
        type: string
  - name: Customer
    super: Audited
    annotations:
      - kind: Entity
      - kind: SecondaryTable
        attributes: {name: CUST_DETAIL}
      - kind: EntityListeners
        attributes: {value: [AuditListener]}
    members:
      - name: Key
        type: CustomerKey
        annotations:
          - kind: embedded_id
      - name: Name
        type: string
        annotations:
          - kind: column
            attributes: {length: 80}
      - name: Images
        type: map[string]*Image
        annotations:
          - kind: OneToMany
          - kind: MapKeyColumn
      - name: Bio
        element: accessor
        type: string
        annotations:
          - kind: Column
            attributes: {table: CUST_DETAIL}
`

func resolveAll(c *qt.C, classes []*decl.Class) []*mapping.EntityDescriptor {
	reg := registry.New()
	defer reg.Close()

	c.Assert(reg.Register(classes...), qt.IsNil)
	c.Assert(reg.Resolve(), qt.IsNil)
	descs, err := reg.Descriptors()
	c.Assert(err, qt.IsNil)
	return descs
}

func TestRegistry_DeclarationSourcesAgree(t *testing.T) {
	c := qt.New(t)

	explicit := resolveAll(c, shop())

	parsed, err := goentity.ParseFile(testutil.CreateTempGoFile(t, shopSource))
	c.Assert(err, qt.IsNil)
	c.Assert(resolveAll(c, parsed), qt.DeepEquals, explicit)

	loaded, err := mappingfile.Parse([]byte(shopYAML))
	c.Assert(err, qt.IsNil)
	c.Assert(resolveAll(c, loaded), qt.DeepEquals, explicit)
}
