package resolve

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-extras/cobraflags"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stokaro/ormeta/config"
	"github.com/stokaro/ormeta/core/decl"
	"github.com/stokaro/ormeta/core/goentity"
	"github.com/stokaro/ormeta/core/mapping"
	"github.com/stokaro/ormeta/core/mappingfile"
	"github.com/stokaro/ormeta/core/platform"
	"github.com/stokaro/ormeta/registry"
)

const (
	rootDirFlag     = "root-dir"
	mappingFileFlag = "mapping-file"
	configFlag      = "config"
	formatFlag      = "format"
	dialectFlag     = "dialect"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatDebug = "debug"
)

func NewResolveCommand() *cobra.Command {
	flags := map[string]cobraflags.Flag{
		rootDirFlag: &cobraflags.StringFlag{
			Name:  rootDirFlag,
			Value: "",
			Usage: "Root directory to scan for Go entities",
		},
		mappingFileFlag: &cobraflags.StringFlag{
			Name:  mappingFileFlag,
			Value: "",
			Usage: "YAML mapping file with class declarations",
		},
		configFlag: &cobraflags.StringFlag{
			Name:  configFlag,
			Value: "",
			Usage: "Configuration file with resolution options",
		},
		formatFlag: &cobraflags.StringFlag{
			Name:  formatFlag,
			Value: FormatText,
			Usage: "Output format (text, json, yaml, debug)",
		},
		dialectFlag: &cobraflags.StringFlag{
			Name:  dialectFlag,
			Value: "",
			Usage: "Dialect used to quote table names (postgres, mysql, mariadb). Overrides the configuration",
		},
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Validate mapping metadata and print the resolved descriptors",
		Long: `Validate mapping metadata and print the resolved descriptors.

Classes are read from Go sources below --root-dir, from the YAML file given by
--mapping-file, or from both. Every class is validated; all violations are
reported together.

Examples:
  ormeta resolve --root-dir ./entities
  ormeta resolve --mapping-file orm.yaml --format json
  ormeta resolve --root-dir ./entities --config ormeta.yaml --dialect mysql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), options{
				rootDir:     flags[rootDirFlag].GetString(),
				mappingFile: flags[mappingFileFlag].GetString(),
				configFile:  flags[configFlag].GetString(),
				format:      flags[formatFlag].GetString(),
				dialect:     flags[dialectFlag].GetString(),
			})
		},
	}

	cobraflags.RegisterMap(resolveCmd, flags)
	return resolveCmd
}

type options struct {
	rootDir     string
	mappingFile string
	configFile  string
	format      string
	dialect     string
}

func run(w io.Writer, o options) error {
	switch o.format {
	case FormatText, FormatJSON, FormatYAML, FormatDebug:
	default:
		return fmt.Errorf("unsupported format %q (want text, json, yaml or debug)", o.format)
	}
	if o.rootDir == "" && o.mappingFile == "" {
		return fmt.Errorf("nothing to resolve: set --%s or --%s", rootDirFlag, mappingFileFlag)
	}

	opts, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.dialect != "" {
		dialect := platform.NormalizeDialect(o.dialect)
		if dialect == "" {
			return platform.UnsupportedDialectError(o.dialect)
		}
		opts.Dialect = dialect
	}

	classes, err := loadClasses(o.rootDir, o.mappingFile)
	if err != nil {
		return err
	}

	reg := registry.New(registry.WithOptions(opts))
	defer reg.Close()

	if err := reg.Register(classes...); err != nil {
		return fmt.Errorf("error registering classes: %w", err)
	}
	if err := reg.Resolve(); err != nil {
		return fmt.Errorf("error resolving mapping metadata: %w", err)
	}
	descs, err := reg.Descriptors()
	if err != nil {
		return err
	}

	return write(w, o.format, opts.Dialect, descs)
}

func loadClasses(rootDir, mappingFile string) ([]*decl.Class, error) {
	var classes []*decl.Class

	if rootDir != "" {
		absPath, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving path: %w", err)
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("directory does not exist: %s", absPath)
		}
		parsed, err := goentity.ParseDir(absPath)
		if err != nil {
			return nil, fmt.Errorf("error parsing package: %w", err)
		}
		classes = append(classes, parsed...)
	}

	if mappingFile != "" {
		loaded, err := mappingfile.Load(mappingFile)
		if err != nil {
			return nil, err
		}
		classes = append(classes, loaded...)
	}
	return classes, nil
}

func write(w io.Writer, format, dialect string, descs []*mapping.EntityDescriptor) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(descs, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(descs); err != nil {
			return fmt.Errorf("error encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatDebug:
		spew.Fdump(w, descs)
		return nil
	default:
		writeText(w, dialect, descs)
		return nil
	}
}

func writeText(w io.Writer, dialect string, descs []*mapping.EntityDescriptor) {
	fmt.Fprintf(w, "Resolved %d classes\n", len(descs))
	for _, d := range descs {
		fmt.Fprintln(w)
		header := fmt.Sprintf("%s (%s)", d.Name, d.Kind)
		if d.Super != "" {
			header += " extends " + d.Super
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, strings.Repeat("=", len(header)))

		if d.Table != nil {
			fmt.Fprintf(w, "table: %s\n", d.Table.QualifiedName(dialect))
		}
		for _, st := range d.SecondaryTables {
			var joins []string
			for _, jc := range st.PKJoinColumns {
				joins = append(joins, jc.Name+" -> "+jc.ReferencedColumnName)
			}
			fmt.Fprintf(w, "secondary table: %s (%s)\n", st.QualifiedName(dialect), strings.Join(joins, ", "))
		}
		if d.ID != nil {
			var cols []string
			for _, col := range d.ID.Columns {
				cols = append(cols, col.Name)
			}
			fmt.Fprintf(w, "id: %s %s declared by %s [%s]\n", d.ID.Kind, d.ID.Member, d.ID.DeclaredBy, strings.Join(cols, ", "))
		}
		if len(d.Listeners) > 0 {
			fmt.Fprintf(w, "listeners: %s\n", strings.Join(d.Listeners, ", "))
		}
		for _, attr := range d.Attributes {
			fmt.Fprintf(w, "  %-20s %s\n", attr.Member, describe(attr))
		}
	}
}

func describe(attr mapping.AttributeSpec) string {
	var s string
	switch {
	case attr.Column != nil:
		s = fmt.Sprintf("%s.%s %s", attr.Column.Table, attr.Column.Name, attr.Column.Type)
		if !attr.Column.Nullable {
			s += " not null"
		}
	case attr.Relationship != mapping.RelationNone:
		s = fmt.Sprintf("%s -> %s", attr.Relationship, attr.TargetEntity)
		var cols []string
		for _, jc := range attr.JoinColumns {
			cols = append(cols, jc.Table+"."+jc.Name)
		}
		if len(cols) > 0 {
			s += " via " + strings.Join(cols, ", ")
		}
	case attr.Collection:
		s = "element collection of " + attr.TargetEntity
	default:
		var cols []string
		for _, col := range attr.Columns {
			cols = append(cols, col.Table+"."+col.Name)
		}
		for _, jc := range attr.JoinColumns {
			cols = append(cols, jc.Table+"."+jc.Name)
		}
		s = fmt.Sprintf("embedded %s [%s]", attr.Embeddable, strings.Join(cols, ", "))
	}
	if attr.MapKey != nil {
		s += fmt.Sprintf(" key %s.%s", attr.MapKey.Table, attr.MapKey.Name)
	}
	if attr.ID {
		s += " (id)"
	}
	return s
}
