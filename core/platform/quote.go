package platform

import (
	"strings"

	"github.com/lib/pq"
)

// QuoteIdentifier quotes a single identifier for the dialect. Unknown
// dialects get ANSI double quotes.
func QuoteIdentifier(dialect, ident string) string {
	switch NormalizeDialect(dialect) {
	case MySQL, MariaDB:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	default:
		return pq.QuoteIdentifier(ident)
	}
}

// QualifiedName joins the non-empty catalog, schema and name parts, each
// quoted for the dialect. MySQL has no catalogs, so the catalog is dropped.
func QualifiedName(dialect, catalog, schema, name string) string {
	d := NormalizeDialect(dialect)
	var parts []string
	if catalog != "" && HasCatalogs(d) {
		parts = append(parts, QuoteIdentifier(d, catalog))
	}
	if schema != "" {
		parts = append(parts, QuoteIdentifier(d, schema))
	}
	parts = append(parts, QuoteIdentifier(d, name))
	return strings.Join(parts, ".")
}
