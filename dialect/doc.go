// Package dialect names the databases generated SQL scripts are applied to.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL through lib/pq ("postgres") or pgx ("pgx")
//   - MySQL: MySQL/MariaDB
//   - SQLite: SQLite through the pure Go modernc driver
//
// # Driver Interface
//
// The package defines the Driver interface implemented by dialect/sql:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	import (
//	    "github.com/bws/jdgen/dialect"
//	    "github.com/bws/jdgen/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//	res, err := sql.Apply(ctx, drv, script, sql.SkipExisting())
package dialect
