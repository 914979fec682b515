package schemainfo

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stokaro/ormeta/core/annotation"
)

func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [kind]",
		Short: "Print the mapping annotation schema",
		Long: `Print the mapping annotation schema.

Without arguments every annotation kind is listed with its directive name,
targets and cardinality. With a kind (Column or column) its attributes are
printed with their types and default values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				writeKinds(cmd.OutOrStdout())
				return nil
			}
			s, err := lookup(args[0])
			if err != nil {
				return err
			}
			writeSchema(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func lookup(name string) (*annotation.Schema, error) {
	if s, err := annotation.Lookup(annotation.Kind(name)); err == nil {
		return s, nil
	}
	return annotation.LookupDirective(name)
}

func writeKinds(w io.Writer) {
	fmt.Fprintf(w, "%-22s %-26s %-20s %s\n", "KIND", "DIRECTIVE", "TARGETS", "CARDINALITY")
	for _, kind := range annotation.Kinds() {
		s, _ := annotation.Lookup(kind)
		fmt.Fprintf(w, "%-22s %-26s %-20s %s\n", kind, "//orm:"+kind.Directive(), s.Targets, s.Cardinality)
	}
}

func writeSchema(w io.Writer, s *annotation.Schema) {
	fmt.Fprintf(w, "%s (//orm:%s)\n", s.Kind, s.Kind.Directive())
	fmt.Fprintf(w, "targets: %s\n", s.Targets)
	fmt.Fprintf(w, "cardinality: %s\n", s.Cardinality)
	if flags := classification(s); len(flags) > 0 {
		fmt.Fprintf(w, "classification: %s\n", strings.Join(flags, ", "))
	}
	if len(s.Attributes) == 0 {
		fmt.Fprintln(w, "no attributes")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-24s %-14s %s\n", "ATTRIBUTE", "TYPE", "DEFAULT")
	for _, def := range s.Attributes {
		typ := def.Type.String()
		if def.Nested != "" {
			typ += " of " + string(def.Nested)
		}
		fmt.Fprintf(w, "%-24s %-14s %s\n", def.Name, typ, defaultLiteral(def))
	}
}

func classification(s *annotation.Schema) []string {
	var flags []string
	if s.Persistence {
		flags = append(flags, "persistence")
	}
	if s.PrimaryKey {
		flags = append(flags, "primary key")
	}
	if s.Relationship {
		flags = append(flags, "relationship")
	}
	if s.ColumnLike {
		flags = append(flags, "column-like")
	}
	return flags
}

func defaultLiteral(def annotation.AttributeDef) string {
	switch {
	case def.Required:
		return "(required)"
	case def.Default == nil:
		return "-"
	case def.Type == annotation.StringValue:
		return fmt.Sprintf("%q", def.Default)
	default:
		return fmt.Sprint(def.Default)
	}
}
