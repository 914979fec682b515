// Package platform knows the SQL dialects that resolved metadata targets.
// It never opens a connection.
package platform

import (
	"fmt"
	"strings"
)

const (
	Postgres = "postgres"
	MySQL    = "mysql"
	MariaDB  = "mariadb"
)

// Dialects returns the canonical dialect names in display order.
func Dialects() []string {
	return []string{Postgres, MySQL, MariaDB}
}

// NormalizeDialect maps driver and dialect aliases to a canonical dialect
// name, or "" when the dialect is not supported.
func NormalizeDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "pgx", "postgresql", "postgres":
		return Postgres
	case "mysql":
		return MySQL
	case "mariadb":
		return MariaDB
	default:
		return ""
	}
}

// HasCatalogs reports whether table names of the dialect can carry a catalog
// part. MySQL and MariaDB only know databases, which play the schema role.
func HasCatalogs(dialect string) bool {
	switch NormalizeDialect(dialect) {
	case MySQL, MariaDB:
		return false
	default:
		return true
	}
}

// UnsupportedDialectError formats the error for a dialect NormalizeDialect
// rejects.
func UnsupportedDialectError(dialect string) error {
	d := Dialects()
	return fmt.Errorf("unsupported dialect %q (want %s or %s)", dialect, strings.Join(d[:len(d)-1], ", "), d[len(d)-1])
}
