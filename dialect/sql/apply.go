package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/bws/jdgen/dialect"
)

// SplitStatements splits a script into statements at semicolons outside of
// string literals, quoted identifiers and comments. Comments are dropped and
// statements are trimmed; empty statements are skipped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		sb    strings.Builder
		rs    = []rune(script)
	)
	flush := func() {
		if s := strings.TrimSpace(sb.String()); s != "" {
			stmts = append(stmts, s)
		}
		sb.Reset()
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			sb.WriteRune('\n')
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			i += 2
			for i+1 < len(rs) && (rs[i] != '*' || rs[i+1] != '/') {
				i++
			}
			i++
			sb.WriteRune(' ')
		case r == '\'' || r == '"' || r == '`':
			// Quotes are escaped by doubling, which reads as two adjacent
			// literals and needs no special case.
			sb.WriteRune(r)
			for i++; i < len(rs); i++ {
				sb.WriteRune(rs[i])
				if rs[i] == r {
					break
				}
			}
		case r == ';':
			flush()
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	return stmts
}

// Error codes of objects or rows that already exist.
var (
	pgExistsCodes = map[string]bool{
		"42P06": true, // duplicate_schema
		"42P07": true, // duplicate_table
		"42701": true, // duplicate_column
		"42710": true, // duplicate_object
		"23505": true, // unique_violation
	}
	mysqlExistsCodes = map[uint16]bool{
		1050: true, // ER_TABLE_EXISTS_ERROR
		1060: true, // ER_DUP_FIELDNAME
		1061: true, // ER_DUP_KEYNAME
		1062: true, // ER_DUP_ENTRY
		1826: true, // ER_FK_DUP_NAME
	}
)

// IsExists reports whether err says that the object or row a statement
// creates is already present.
func IsExists(err error) bool {
	if err == nil {
		return false
	}
	var (
		pqErr  *pq.Error
		pgxErr *pgconn.PgError
		myErr  *mysql.MySQLError
	)
	switch {
	case errors.As(err, &pqErr):
		return pgExistsCodes[string(pqErr.Code)]
	case errors.As(err, &pgxErr):
		return pgExistsCodes[pgxErr.Code]
	case errors.As(err, &myErr):
		return mysqlExistsCodes[myErr.Number]
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "unique constraint failed")
}

// ApplyOption configures Apply.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	skipExisting bool
	noTx         bool
	logger       *slog.Logger
}

// SkipExisting ignores statements failing because their object or row
// already exists, so a script can be applied again.
func SkipExisting() ApplyOption {
	return func(c *applyConfig) {
		c.skipExisting = true
	}
}

// WithoutTx executes statements directly on the driver.
func WithoutTx() ApplyOption {
	return func(c *applyConfig) {
		c.noTx = true
	}
}

// WithApplyLogger sets the logger of Apply.
func WithApplyLogger(l *slog.Logger) ApplyOption {
	return func(c *applyConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ApplyResult describes an applied script.
type ApplyResult struct {
	Statements int `json:"statements"`
	Executed   int `json:"executed"`
	Skipped    int `json:"skipped"`
}

// StatementError is returned by Apply for a failing statement.
type StatementError struct {
	// Index is the zero based position of the statement in the script.
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("dialect/sql: statement %d: %v", e.Index+1, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// savepoint guards single statements inside PostgreSQL transactions, where
// any failure aborts the transaction.
const savepoint = "jdgen_stmt"

// Apply executes the statements of script in order. Unless WithoutTx is
// given all statements run in one transaction that is rolled back on the
// first failure.
func Apply(ctx context.Context, drv dialect.Driver, script string, opts ...ApplyOption) (res *ApplyResult, rerr error) {
	cfg := &applyConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	stmts := SplitStatements(script)
	res = &ApplyResult{Statements: len(stmts)}
	if len(stmts) == 0 {
		return res, nil
	}
	var (
		ex     dialect.ExecQuerier = drv
		inTx   bool
		pgSave = cfg.skipExisting && !cfg.noTx && drv.Dialect() == dialect.Postgres
	)
	if !cfg.noTx {
		tx, err := drv.Tx(ctx)
		if err != nil {
			return nil, fmt.Errorf("dialect/sql: begin: %w", err)
		}
		ex, inTx = tx, true
		defer func() {
			if rerr != nil {
				if err := tx.Rollback(); err != nil {
					rerr = errors.Join(rerr, fmt.Errorf("dialect/sql: rollback: %w", err))
				}
				return
			}
			if err := tx.Commit(); err != nil {
				res, rerr = nil, fmt.Errorf("dialect/sql: commit: %w", err)
			}
		}()
	}
	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pgSave {
			if err := ex.Exec(ctx, "SAVEPOINT "+savepoint, []any{}, nil); err != nil {
				return nil, &StatementError{Index: i, Statement: stmt, Err: err}
			}
		}
		err := ex.Exec(ctx, stmt, []any{}, nil)
		switch {
		case err == nil:
			res.Executed++
			if pgSave {
				err = ex.Exec(ctx, "RELEASE SAVEPOINT "+savepoint, []any{}, nil)
			}
		case cfg.skipExisting && IsExists(err):
			res.Skipped++
			cfg.logger.Debug("statement skipped", "index", i+1, "error", err)
			err = nil
			if pgSave {
				err = ex.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint, []any{}, nil)
			}
		}
		if err != nil {
			return nil, &StatementError{Index: i, Statement: stmt, Err: err}
		}
	}
	cfg.logger.Info("script applied", "dialect", drv.Dialect(), "tx", inTx,
		"statements", res.Statements, "executed", res.Executed, "skipped", res.Skipped)
	return res, nil
}
