package platform

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Defaults are the catalog and schema a connection would use when a table
// declares neither.
type Defaults struct {
	Catalog string
	Schema  string
}

// DefaultsFromDSN derives the dialect and the default catalog and schema from
// a connection string without connecting.
//
// PostgreSQL ("postgres://", "postgresql://" or key=value form): the catalog is
// the database name and the schema is the first entry of search_path, "public"
// when unset. MySQL ("mysql://" prefix or go-sql-driver DSN): there is no
// catalog and the schema is the database name.
func DefaultsFromDSN(dsn string) (string, Defaults, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), isKeyValueDSN(dsn):
		cfg, err := pgconn.ParseConfig(dsn)
		if err != nil {
			return "", Defaults{}, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		return Postgres, Defaults{Catalog: cfg.Database, Schema: firstSearchPath(cfg.RuntimeParams["search_path"])}, nil
	case strings.HasPrefix(dsn, "mysql://"), strings.HasPrefix(dsn, "mariadb://"):
		dialect := MySQL
		if strings.HasPrefix(dsn, "mariadb://") {
			dialect = MariaDB
		}
		_, rest, _ := strings.Cut(dsn, "://")
		return parseMySQL(dialect, rest)
	default:
		return parseMySQL(MySQL, dsn)
	}
}

func parseMySQL(dialect, dsn string) (string, Defaults, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", Defaults{}, fmt.Errorf("invalid %s dsn: %w", dialect, err)
	}
	return dialect, Defaults{Schema: cfg.DBName}, nil
}

func isKeyValueDSN(dsn string) bool {
	return strings.Contains(dsn, "=") && !strings.Contains(dsn, "@") && !strings.Contains(dsn, "/")
}

func firstSearchPath(searchPath string) string {
	for _, part := range strings.Split(searchPath, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" && part != "$user" {
			return part
		}
	}
	return "public"
}
