// Package sql applies generated SQL scripts to a database.
//
// Open accepts the driver names of the dialect package. The lib/pq, pgx,
// MySQL and modernc SQLite drivers are registered by this package.
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// Apply splits a script into statements and executes them in one
// transaction. With SkipExisting, statements creating objects or rows that
// already exist are skipped, so the scripts of a project can be applied
// after every generation run. On PostgreSQL each statement is guarded by a
// savepoint because a failed statement aborts the whole transaction.
//
//	res, err := sql.Apply(ctx, drv, script, sql.SkipExisting())
//	if err != nil {
//	    var se *sql.StatementError
//	    if errors.As(err, &se) {
//	        log.Printf("statement %d failed: %s", se.Index+1, se.Statement)
//	    }
//	    return err
//	}
//	fmt.Printf("%d executed, %d skipped\n", res.Executed, res.Skipped)
//
// # Statistics
//
// NewStatsDriver wraps a driver and counts the statements Apply executes,
// telling apart statements that ran, objects that already existed and
// failures:
//
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowStatementLog(logger),
//	)
//	_, err := sql.Apply(ctx, stats, script)
//	fmt.Println(stats.Stats().Snapshot())
package sql
