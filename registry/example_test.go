package registry_test

import (
	"fmt"

	"github.com/go-extras/go-kit/must"

	"github.com/stokaro/ormeta/config"
	"github.com/stokaro/ormeta/core/mappingfile"
	"github.com/stokaro/ormeta/registry"
)

func ExampleRegistry() {
	classes := must.Must(mappingfile.Parse([]byte(`
classes:
  - name: Product
    annotations:
      - kind: Entity
      - kind: SecondaryTable
        attributes: {name: PRODUCT_TEXT}
    members:
      - name: ID
        type: int64
        annotations:
          - kind: Id
      - name: Description
        type: string
        annotations:
          - kind: Column
            attributes: {table: PRODUCT_TEXT}
`)))

	reg := registry.New(registry.WithOptions(config.WithDefaultSchema("", "shop")))
	defer reg.Close()

	if err := reg.Register(classes...); err != nil {
		fmt.Println(err)
		return
	}
	if err := reg.Resolve(); err != nil {
		fmt.Println(err)
		return
	}

	product := must.Must(reg.Descriptor("Product"))
	fmt.Println(product.Table.QualifiedName("postgres"))
	for _, st := range product.SecondaryTables {
		fmt.Println(st.Name, st.PKJoinColumns[0].Name, "->", st.PKJoinColumns[0].ReferencedColumnName)
	}
	description, _ := product.Attribute("Description")
	fmt.Println(description.Column.Name, description.Column.Table, description.Column.Length)

	// Output:
	// "shop"."PRODUCT"
	// PRODUCT_TEXT ID -> ID
	// DESCRIPTION PRODUCT_TEXT 255
}
