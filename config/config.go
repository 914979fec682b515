// Package config provides configuration options for ormeta metadata resolution.
//
// Options can be built programmatically (DefaultResolveOptions and the With...
// helpers) or loaded from a configuration file and ORMETA_* environment
// variables with Load.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stokaro/ormeta/core/platform"
)

// Identifier cases applied to synthesized names.
const (
	IdentifierCaseUpper    = "upper"
	IdentifierCaseLower    = "lower"
	IdentifierCasePreserve = "preserve"
)

// Foreign key precedence when both a secondary table and one of its primary
// key join columns declare a foreign key.
const (
	// ForeignKeyJoinColumn lets the join column's own foreign key win (most specific wins).
	ForeignKeyJoinColumn = "join-column"
	// ForeignKeyTable lets the secondary table's foreign key win.
	ForeignKeyTable = "table"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "ORMETA"

// ResolveOptions controls how declared metadata is defaulted and resolved.
type ResolveOptions struct {
	// DefaultCatalog and DefaultSchema fill tables without an explicit catalog or schema.
	DefaultCatalog string `mapstructure:"default_catalog"`
	DefaultSchema  string `mapstructure:"default_schema"`

	// IdentifierCase is applied to synthesized table and column names:
	// "upper" (default), "lower" or "preserve".
	IdentifierCase string `mapstructure:"identifier_case"`

	// ForeignKeyPrecedence decides the foreign key of a secondary table join
	// column when both levels declare one: "join-column" (default) or "table".
	ForeignKeyPrecedence string `mapstructure:"foreign_key_precedence"`

	// Parallelism bounds concurrent resolution within one dependency level.
	// Zero or less means unbounded.
	Parallelism int `mapstructure:"parallelism"`

	// Dialect is used when rendering qualified table names (postgres, mysql, mariadb).
	Dialect string `mapstructure:"dialect"`

	// DSN, when set, supplies the dialect and the default catalog and schema
	// that are not configured explicitly. No connection is made.
	DSN string `mapstructure:"dsn"`
}

// DefaultResolveOptions returns the default resolution options.
func DefaultResolveOptions() *ResolveOptions {
	return &ResolveOptions{
		IdentifierCase:       IdentifierCaseUpper,
		ForeignKeyPrecedence: ForeignKeyJoinColumn,
		Parallelism:          4,
		Dialect:              platform.Postgres,
	}
}

// WithDefaultSchema returns default options using the given catalog and schema.
//
// Example:
//
//	opts := config.WithDefaultSchema("", "sales")
func WithDefaultSchema(catalog, schema string) *ResolveOptions {
	opts := DefaultResolveOptions()
	opts.DefaultCatalog = catalog
	opts.DefaultSchema = schema
	return opts
}

// WithIdentifierCase returns default options using the given identifier case.
func WithIdentifierCase(identifierCase string) *ResolveOptions {
	opts := DefaultResolveOptions()
	opts.IdentifierCase = identifierCase
	return opts
}

// Validate checks enumerated option values.
func (o *ResolveOptions) Validate() error {
	switch o.IdentifierCase {
	case IdentifierCaseUpper, IdentifierCaseLower, IdentifierCasePreserve:
	default:
		return fmt.Errorf("invalid identifier case %q (want upper, lower or preserve)", o.IdentifierCase)
	}
	switch o.ForeignKeyPrecedence {
	case ForeignKeyJoinColumn, ForeignKeyTable:
	default:
		return fmt.Errorf("invalid foreign key precedence %q (want join-column or table)", o.ForeignKeyPrecedence)
	}
	if o.Dialect != "" && platform.NormalizeDialect(o.Dialect) == "" {
		return platform.UnsupportedDialectError(o.Dialect)
	}
	return nil
}

// ApplyDSN takes the dialect from the configured DSN and fills the default
// catalog and schema where they are not configured explicitly.
func (o *ResolveOptions) ApplyDSN() error {
	if o.DSN == "" {
		return nil
	}
	dialect, defaults, err := platform.DefaultsFromDSN(o.DSN)
	if err != nil {
		return fmt.Errorf("error reading dsn: %w", err)
	}
	o.Dialect = dialect
	if o.DefaultCatalog == "" {
		o.DefaultCatalog = defaults.Catalog
	}
	if o.DefaultSchema == "" {
		o.DefaultSchema = defaults.Schema
	}
	return nil
}

// Load reads resolution options. Precedence, lowest first: defaults, the
// configuration file at path (skipped when path is empty), a .env file in the
// working directory, ORMETA_* environment variables.
//
// Example:
//
//	opts, err := config.Load("ormeta.yaml")
//	// ORMETA_DEFAULT_SCHEMA=sales overrides default_schema from the file
func Load(path string) (*ResolveOptions, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	defaults := DefaultResolveOptions()
	v.SetDefault("default_catalog", defaults.DefaultCatalog)
	v.SetDefault("default_schema", defaults.DefaultSchema)
	v.SetDefault("identifier_case", defaults.IdentifierCase)
	v.SetDefault("foreign_key_precedence", defaults.ForeignKeyPrecedence)
	v.SetDefault("parallelism", defaults.Parallelism)
	v.SetDefault("dialect", defaults.Dialect)
	v.SetDefault("dsn", defaults.DSN)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	opts := &ResolveOptions{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := opts.ApplyDSN(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Dialect = platform.NormalizeDialect(opts.Dialect)
	return opts, nil
}
