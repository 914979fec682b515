// Package integration runs end-to-end scenarios: fixture entity packages
// under fixtures/entities are parsed, registered and resolved, and the
// resulting descriptors or errors are checked.
package integration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/stokaro/ormeta/config"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/goentity"
	"github.com/stokaro/ormeta/core/mapping"
	"github.com/stokaro/ormeta/core/mappingfile"
	"github.com/stokaro/ormeta/core/validate"
	"github.com/stokaro/ormeta/registry"
)

// FixturesDir is the directory holding one sub-directory per fixture.
const FixturesDir = "fixtures/entities"

// MappingFileName is the optional YAML mapping file of a fixture.
const MappingFileName = "orm.yaml"

// TestScenario resolves one fixture and checks the outcome.
type TestScenario struct {
	Name        string
	Description string
	Fixture     string // sub-directory of FixturesDir
	Options     *config.ResolveOptions
	// TestFunc receives the registry after Resolve and the Resolve error.
	TestFunc func(reg *registry.Registry, resolveErr error) error
}

// LoadFixture reads the Go entities of a fixture directory and, when
// present, its YAML mapping file.
func LoadFixture(dir string) ([]*decl.Class, error) {
	classes, err := goentity.ParseDir(dir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, MappingFileName)
	if _, err := os.Stat(path); err == nil {
		loaded, err := mappingfile.Load(path)
		if err != nil {
			return nil, err
		}
		classes = append(classes, loaded...)
	}
	return classes, nil
}

// Run loads, registers and resolves the scenario fixture, then applies its
// TestFunc.
func Run(s TestScenario) error {
	classes, err := LoadFixture(filepath.Join(FixturesDir, s.Fixture))
	if err != nil {
		return fmt.Errorf("error loading fixture %s: %w", s.Fixture, err)
	}

	reg := registry.New(registry.WithOptions(s.Options))
	defer reg.Close()

	if err := reg.Register(classes...); err != nil {
		return fmt.Errorf("error registering fixture %s: %w", s.Fixture, err)
	}
	return s.TestFunc(reg, reg.Resolve())
}

// GetAllScenarios returns every integration scenario.
func GetAllScenarios() []TestScenario {
	return []TestScenario{
		{
			Name:        "embedded_id_secondary_table",
			Description: "Embedded id columns become the secondary table join columns in key order",
			Fixture:     "001-embedded-id",
			TestFunc:    testEmbeddedIDSecondaryTable,
		},
		{
			Name:        "mapped_superclass_inheritance",
			Description: "Entities inherit the key, attributes and listeners of a mapped superclass",
			Fixture:     "002-inheritance",
			TestFunc:    testMappedSuperclassInheritance,
		},
		{
			Name:        "map_key_columns",
			Description: "Map key columns default to <FIELD>_KEY in the association table",
			Fixture:     "003-map-key-columns",
			TestFunc:    testMapKeyColumns,
		},
		{
			Name:        "map_key_columns_lower_case",
			Description: "Synthesized names follow the configured identifier case",
			Fixture:     "003-map-key-columns",
			Options:     config.WithIdentifierCase(config.IdentifierCaseLower),
			TestFunc:    testMapKeyColumnsLowerCase,
		},
		{
			Name:        "mixed_sources",
			Description: "A Go entity embeds an embeddable declared in a YAML mapping file",
			Fixture:     "004-mixed-sources",
			TestFunc:    testMixedSources,
		},
		{
			Name:        "invalid_mapping",
			Description: "Every violation of a class is reported together",
			Fixture:     "005-invalid-mapping",
			TestFunc:    testInvalidMapping,
		},
		{
			Name:        "cyclic_reference",
			Description: "Map value entities referencing each other form a dependency cycle",
			Fixture:     "006-cyclic-reference",
			TestFunc:    testCyclicReference,
		},
	}
}

func descriptor(reg *registry.Registry, resolveErr error, name string) (*mapping.EntityDescriptor, error) {
	if resolveErr != nil {
		return nil, fmt.Errorf("unexpected resolve error: %w", resolveErr)
	}
	return reg.Descriptor(name)
}

func columnNames[T any](cols []T, name func(T) string) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		out = append(out, name(col))
	}
	return out
}

func expect[T comparable](what string, got, want T) error {
	if got != want {
		return fmt.Errorf("%s: got %v, want %v", what, got, want)
	}
	return nil
}

func expectSlice(what string, got, want []string) error {
	if !slices.Equal(got, want) {
		return fmt.Errorf("%s: got %v, want %v", what, got, want)
	}
	return nil
}

func testEmbeddedIDSecondaryTable(reg *registry.Registry, resolveErr error) error {
	order, err := descriptor(reg, resolveErr, "Order")
	if err != nil {
		return err
	}
	if len(order.SecondaryTables) != 1 {
		return fmt.Errorf("expected 1 secondary table, got %d", len(order.SecondaryTables))
	}
	st := order.SecondaryTables[0]
	note, _ := order.Attribute("Note")

	return errors.Join(
		expect("table", order.Table.Name, "PURCHASE_ORDER"),
		expect("id kind", order.ID.Kind, mapping.IDEmbedded),
		expectSlice("id columns", columnNames(order.PrimaryKeyColumns(), func(c mapping.ColumnSpec) string { return c.Name }), []string{"REGION", "ORDER_NO"}),
		expectSlice("join columns", columnNames(st.PKJoinColumns, func(c mapping.JoinColumnSpec) string { return c.Name }), []string{"NOTE_REGION", "NOTE_NO"}),
		expectSlice("referenced columns", columnNames(st.PKJoinColumns, func(c mapping.JoinColumnSpec) string { return c.ReferencedColumnName }), []string{"REGION", "ORDER_NO"}),
		expect("join column foreign key", st.PKJoinColumns[0].ForeignKey.Name, "FK_ORDER_NOTES"),
		expect("note table", note.Column.Table, "ORDER_NOTES"),
		expect("note length", note.Column.Length, 2000),
	)
}

func testMappedSuperclassInheritance(reg *registry.Registry, resolveErr error) error {
	customer, err := descriptor(reg, resolveErr, "Customer")
	if err != nil {
		return err
	}
	supplier, err := reg.Descriptor("Supplier")
	if err != nil {
		return err
	}
	created, _ := customer.Attribute("CreatedAt")
	_, cached := supplier.Attribute("Cache")

	return errors.Join(
		expect("id declared by", customer.ID.DeclaredBy, "Audited"),
		expect("id column table", customer.ID.Columns[0].Table, "CUSTOMER"),
		expectSlice("customer listeners", customer.Listeners, []string{"AuditListener", "MailListener"}),
		expectSlice("supplier listeners", supplier.Listeners, []string{"AuditListener"}),
		expect("inherited column table", created.Column.Table, "CUSTOMER"),
		expect("supplier id table", supplier.ID.Columns[0].Table, "SUPPLIER"),
		expect("transient attribute", cached, false),
	)
}

func testMapKeyColumns(reg *registry.Registry, resolveErr error) error {
	product, err := descriptor(reg, resolveErr, "Product")
	if err != nil {
		return err
	}
	images, _ := product.Attribute("Images")
	tags, _ := product.Attribute("Tags")
	cover, _ := product.Attribute("Cover")

	return errors.Join(
		expect("images key", images.MapKey.Name, "IMAGES_KEY"),
		expect("images key table", images.MapKey.Table, "PRODUCT_IMAGE"),
		expect("images key type", images.MapKey.Type, "string"),
		expect("tags key", tags.MapKey.Name, "TAG_NAME"),
		expect("tags key table", tags.MapKey.Table, "PRODUCT_TAGS"),
		expect("tags key length", tags.MapKey.Length, 40),
		expect("cover join column", cover.JoinColumns[0].Name, "COVER_ID"),
		expect("cover join table", cover.JoinColumns[0].Table, "PRODUCT"),
	)
}

func testMapKeyColumnsLowerCase(reg *registry.Registry, resolveErr error) error {
	product, err := descriptor(reg, resolveErr, "Product")
	if err != nil {
		return err
	}
	images, _ := product.Attribute("Images")

	return errors.Join(
		expect("table", product.Table.Name, "product"),
		expect("images key", images.MapKey.Name, "images_key"),
		expect("images key table", images.MapKey.Table, "product_image"),
	)
}

func testMixedSources(reg *registry.Registry, resolveErr error) error {
	customer, err := descriptor(reg, resolveErr, "Customer")
	if err != nil {
		return err
	}
	home, _ := customer.Attribute("Home")

	return errors.Join(
		expect("embeddable", home.Embeddable, "Address"),
		expectSlice("columns", columnNames(home.Columns, func(c mapping.ColumnSpec) string { return c.Table + "." + c.Name }), []string{"CUSTOMER.STREET", "CUSTOMER.TOWN"}),
	)
}

func testInvalidMapping(reg *registry.Registry, resolveErr error) error {
	var verr *validate.ValidationError
	if !errors.As(resolveErr, &verr) {
		return fmt.Errorf("expected a validation error, got %v", resolveErr)
	}
	if _, err := reg.Descriptor("Entry"); !errors.Is(err, registry.ErrNotFound) {
		return fmt.Errorf("nothing may be published after a failed resolve, got %v", err)
	}
	return errors.Join(
		expect("entity", verr.Entity, "Account"),
		expect("rules", fmt.Sprint(verr.Rules()), fmt.Sprint([]validate.Rule{
			validate.RuleColumnDefinitionOptions,
			validate.RuleMapKeyColumn,
			validate.RulePrimaryKey,
		})),
	)
}

func testCyclicReference(_ *registry.Registry, resolveErr error) error {
	var cerr *validate.CyclicReferenceError
	if !errors.As(resolveErr, &cerr) {
		return fmt.Errorf("expected a cyclic reference error, got %v", resolveErr)
	}
	return expectSlice("cycle", cerr.Cycle, []string{"Author", "Book", "Author"})
}
