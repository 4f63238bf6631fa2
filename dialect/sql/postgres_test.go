//go:build integration

package sql

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/bws/jdgen/dialect"
)

const postgresScript = `
CREATE TABLE code (
    code_id INTEGER NOT NULL,
    category_id INTEGER NOT NULL,
    name VARCHAR(100),
    CONSTRAINT pk_code PRIMARY KEY (code_id)
);
CREATE TABLE invoice (
    invoice_id INTEGER NOT NULL,
    status INTEGER,
    CONSTRAINT pk_invoice PRIMARY KEY (invoice_id)
);
ALTER TABLE invoice ADD CONSTRAINT fk_code_invoice_status FOREIGN KEY (status) REFERENCES code (code_id);
INSERT INTO code (code_id, category_id, name) VALUES (1, 1, 'Open');
`

func TestApplyPostgres(t *testing.T) {
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("jdgen"),
		postgres.WithUsername("jdgen"),
		postgres.WithPassword("jdgen"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := slog.New(slog.DiscardHandler)
	for _, name := range []string{dialect.Pgx, dialect.Postgres} {
		t.Run(name, func(t *testing.T) {
			drv, err := Open(name, dsn)
			require.NoError(t, err)
			defer drv.Close()

			res, err := Apply(ctx, drv, postgresScript, SkipExisting(), WithApplyLogger(log))
			require.NoError(t, err)
			assert.Equal(t, 4, res.Statements)
			// The first driver creates everything, the second finds it.
			if name == dialect.Pgx {
				assert.Equal(t, 4, res.Executed)
			} else {
				assert.Equal(t, 4, res.Skipped)
			}

			_, err = Apply(ctx, drv, "INSERT INTO invoice (invoice_id, status) VALUES (1, 99);", WithApplyLogger(log))
			var se *StatementError
			require.ErrorAs(t, err, &se)
			assert.False(t, IsExists(err))
		})
	}
}
