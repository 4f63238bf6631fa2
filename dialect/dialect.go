package dialect

import (
	"context"
	"database/sql/driver"
	"slices"
)

// Dialect names.
const (
	Postgres = "postgres"
	Pgx      = "pgx"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Names returns the driver names jdgen can apply scripts with.
func Names() []string { return []string{Postgres, Pgx, MySQL, SQLite} }

// Supported reports whether name is a known driver name.
func Supported(name string) bool { return slices.Contains(Names(), name) }

// Canonical returns the database family of a driver name. The pgx driver
// talks to PostgreSQL.
func Canonical(name string) string {
	if name == Pgx {
		return Postgres
	}
	return name
}

// ExecQuerier wraps the two database operations used by jdgen.
type ExecQuerier interface {
	// Exec executes a statement. v is nil or a *sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query and stores the rows in v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is a database connection.
type Driver interface {
	ExecQuerier
	// Tx starts a transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the database family of the driver.
	Dialect() string
}

// Tx is a transaction of a Driver.
type Tx interface {
	ExecQuerier
	driver.Tx
}
