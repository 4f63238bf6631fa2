package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen/dialect"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{name: "empty", script: " \n-- nothing\n"},
		{
			name:   "statements",
			script: "CREATE TABLE a (id INTEGER);\nCREATE TABLE b (id INTEGER);\n",
			want:   []string{"CREATE TABLE a (id INTEGER)", "CREATE TABLE b (id INTEGER)"},
		},
		{
			name:   "no trailing semicolon",
			script: "DELETE FROM a;\nDELETE FROM b",
			want:   []string{"DELETE FROM a", "DELETE FROM b"},
		},
		{
			name:   "quoted semicolons",
			script: "INSERT INTO code (name) VALUES ('a;b');INSERT INTO \"x;y\" VALUES ('it''s; fine');",
			want:   []string{"INSERT INTO code (name) VALUES ('a;b')", "INSERT INTO \"x;y\" VALUES ('it''s; fine')"},
		},
		{
			name:   "comments",
			script: "-- header; with semicolon\nCREATE TABLE a (id INTEGER); /* block; comment */\nCREATE TABLE b (id INTEGER); -- trailing",
			want:   []string{"CREATE TABLE a (id INTEGER)", "CREATE TABLE b (id INTEGER)"},
		},
		{
			name:   "dash inside literal",
			script: "INSERT INTO code (name) VALUES ('--not a comment');",
			want:   []string{"INSERT INTO code (name) VALUES ('--not a comment')"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatements(tt.script))
		})
	}
}

func TestIsExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pq duplicate table", &pq.Error{Code: "42P07"}, true},
		{"pq syntax", &pq.Error{Code: "42601"}, false},
		{"pgx duplicate object", &pgconn.PgError{Code: "42710"}, true},
		{"pgx unique", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), true},
		{"mysql table exists", &mysql.MySQLError{Number: 1050}, true},
		{"mysql key exists", &mysql.MySQLError{Number: 1061}, true},
		{"mysql syntax", &mysql.MySQLError{Number: 1064}, false},
		{"sqlite table", errors.New("SQL logic error: table code already exists (1)"), true},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: code.code_id (2067)"), true},
		{"other", errors.New("no such table: code"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExists(tt.err))
		})
	}
}

func newMock(t *testing.T, name string) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(name, db), mock
}

const script = `
CREATE TABLE code (code_id INTEGER);
INSERT INTO code (code_id) VALUES (1);
`

func TestApply(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	t.Run("transaction", func(t *testing.T) {
		drv, mock := newMock(t, dialect.SQLite)
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		res, err := Apply(ctx, drv, script, WithApplyLogger(log))
		require.NoError(t, err)
		assert.Equal(t, &ApplyResult{Statements: 2, Executed: 2}, res)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on failure", func(t *testing.T) {
		drv, mock := newMock(t, dialect.SQLite)
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		res, err := Apply(ctx, drv, script, WithApplyLogger(log))
		assert.Nil(t, res)
		var se *StatementError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 1, se.Index)
		assert.Equal(t, "INSERT INTO code (code_id) VALUES (1)", se.Statement)
		assert.ErrorContains(t, err, "statement 2: dialect/sql: exec: disk full")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing objects fail by default", func(t *testing.T) {
		drv, mock := newMock(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnError(&mysql.MySQLError{Number: 1050, Message: "Table 'code' already exists"})
		mock.ExpectRollback()

		_, err := Apply(ctx, drv, script, WithApplyLogger(log))
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skip existing", func(t *testing.T) {
		drv, mock := newMock(t, dialect.MySQL)
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnError(&mysql.MySQLError{Number: 1050, Message: "Table 'code' already exists"})
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectCommit()

		res, err := Apply(ctx, drv, script, SkipExisting(), WithApplyLogger(log))
		require.NoError(t, err)
		assert.Equal(t, &ApplyResult{Statements: 2, Skipped: 2}, res)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres savepoints", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Pgx)
		mock.ExpectBegin()
		mock.ExpectExec("SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnError(&pgconn.PgError{Code: "42P07", Message: `relation "code" already exists`})
		mock.ExpectExec("ROLLBACK TO SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("RELEASE SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		res, err := Apply(ctx, drv, script, SkipExisting(), WithApplyLogger(log))
		require.NoError(t, err)
		assert.Equal(t, &ApplyResult{Statements: 2, Executed: 1, Skipped: 1}, res)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without transaction", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Postgres)
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnError(&pq.Error{Code: "42P07"})
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnResult(sqlmock.NewResult(1, 1))

		res, err := Apply(ctx, drv, script, SkipExisting(), WithoutTx(), WithApplyLogger(log))
		require.NoError(t, err)
		assert.Equal(t, &ApplyResult{Statements: 2, Executed: 1, Skipped: 1}, res)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty script", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Postgres)
		res, err := Apply(ctx, drv, "-- nothing to do\n")
		require.NoError(t, err)
		assert.Equal(t, &ApplyResult{}, res)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("canceled", func(t *testing.T) {
		drv, _ := newMock(t, dialect.SQLite)
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Apply(ctx, drv, script, WithApplyLogger(log))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestApplySQLite(t *testing.T) {
	ctx := context.Background()
	drv, err := Open(dialect.SQLite, "file:"+filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer drv.Close()

	const entity = `
CREATE TABLE code (
    code_id INTEGER NOT NULL,
    category_id INTEGER NOT NULL,
    name VARCHAR(100),
    CONSTRAINT pk_code PRIMARY KEY (code_id)
);
-- Seed rows.
INSERT INTO code (code_id, category_id, name) VALUES (1, 1, 'Red; dark');
INSERT INTO code (code_id, category_id, name) VALUES (2, 1, 'Blue');
`
	stats := NewStatsDriver(drv)
	res, err := Apply(ctx, stats, entity, WithApplyLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Executed)
	assert.EqualValues(t, 3, stats.Stats().Snapshot().Executed)

	res, err = Apply(ctx, drv, entity, SkipExisting(), WithApplyLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	assert.Equal(t, &ApplyResult{Statements: 3, Skipped: 3}, res)

	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT name FROM code WHERE code_id = ?", []any{1}, rows))
	defer rows.Close()
	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	assert.Equal(t, "Red; dark", name)
}

func TestStatsDriver(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	t.Run("savepoints are counted apart", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Pgx)
		stats := NewStatsDriver(drv)
		mock.ExpectBegin()
		mock.ExpectExec("SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnError(&pgconn.PgError{Code: "42P07", Message: `relation "code" already exists`})
		mock.ExpectExec("ROLLBACK TO SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("RELEASE SAVEPOINT jdgen_stmt").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		_, err := Apply(ctx, stats, script, SkipExisting(), WithApplyLogger(log))
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		s := stats.Stats().Snapshot()
		assert.EqualValues(t, 1, s.Executed)
		assert.EqualValues(t, 1, s.Existing)
		assert.Zero(t, s.Failed)
		assert.EqualValues(t, 4, s.Savepoints)
		assert.EqualValues(t, 2, s.Statements())
	})

	t.Run("failures", func(t *testing.T) {
		drv, mock := newMock(t, dialect.MySQL)
		stats := NewStatsDriver(drv)
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnError(errors.New("boom"))

		_, err := Apply(ctx, stats, script, WithoutTx(), WithApplyLogger(log))
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		s := stats.Stats().Snapshot()
		assert.EqualValues(t, 1, s.Executed)
		assert.EqualValues(t, 1, s.Failed)
		assert.Equal(t, "statements=2 executed=1 existing=0 failed=1 slow=0 duration="+s.Duration.String(), s.String())
	})

	t.Run("slow statements", func(t *testing.T) {
		drv, mock := newMock(t, dialect.Postgres)
		var slow []string
		stats := NewStatsDriver(drv,
			WithSlowThreshold(5*time.Millisecond),
			WithSlowStatementHook(func(_ context.Context, stmt string, _ time.Duration) { slow = append(slow, stmt) }),
		)
		mock.ExpectExec("CREATE TABLE code (code_id INTEGER)").WillDelayFor(20 * time.Millisecond).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO code (code_id) VALUES (1)").WillReturnResult(sqlmock.NewResult(1, 1))

		_, err := Apply(ctx, stats, script, WithoutTx(), WithApplyLogger(log))
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, []string{"CREATE TABLE code (code_id INTEGER)"}, slow)
		assert.EqualValues(t, 1, stats.Stats().Snapshot().Slow)
	})
}
