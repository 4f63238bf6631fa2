package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bws/jdgen/dialect"
)

// ApplyStats counts the statements executed through a StatsDriver. Savepoint
// statements issued by Apply are counted apart from script statements.
type ApplyStats struct {
	executed   atomic.Int64
	existing   atomic.Int64
	failed     atomic.Int64
	savepoints atomic.Int64
	slow       atomic.Int64
	duration   atomic.Int64 // nanoseconds
}

// Snapshot returns the current counts.
func (s *ApplyStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Executed:   s.executed.Load(),
		Existing:   s.existing.Load(),
		Failed:     s.failed.Load(),
		Savepoints: s.savepoints.Load(),
		Slow:       s.slow.Load(),
		Duration:   time.Duration(s.duration.Load()),
	}
}

// StatsSnapshot is a point-in-time copy of ApplyStats.
type StatsSnapshot struct {
	// Executed counts script statements that succeeded.
	Executed int64 `json:"executed"`
	// Existing counts script statements that failed because their object or
	// row already exists.
	Existing int64 `json:"existing"`
	// Failed counts every other failing statement.
	Failed     int64         `json:"failed"`
	Savepoints int64         `json:"savepoints"`
	Slow       int64         `json:"slow"`
	Duration   time.Duration `json:"duration"`
}

// Statements returns the number of script statements sent to the database.
func (s StatsSnapshot) Statements() int64 { return s.Executed + s.Existing + s.Failed }

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("statements=%d executed=%d existing=%d failed=%d slow=%d duration=%s",
		s.Statements(), s.Executed, s.Existing, s.Failed, s.Slow, s.Duration)
}

// SlowStatementHook is called for every script statement slower than the
// threshold.
type SlowStatementHook func(ctx context.Context, stmt string, d time.Duration)

// StatsDriver wraps a driver and counts the statements executed with Exec,
// directly or inside a transaction. Queries are passed through.
type StatsDriver struct {
	dialect.Driver
	stats     *ApplyStats
	threshold time.Duration
	hook      SlowStatementHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// Default is 500ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithSlowStatementHook sets the callback of slow statements.
func WithSlowStatementHook(hook SlowStatementHook) StatsOption {
	return func(s *StatsDriver) {
		s.hook = hook
	}
}

// WithSlowStatementLog logs slow statements to l, or to the default logger
// when l is nil.
func WithSlowStatementLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowStatementHook(func(ctx context.Context, stmt string, d time.Duration) {
		l.WarnContext(ctx, "slow statement", "duration", d, "statement", stmt)
	})
}

// NewStatsDriver wraps drv with statement counting.
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:    drv,
		stats:     &ApplyStats{},
		threshold: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the live counters of the driver.
func (d *StatsDriver) Stats() *ApplyStats { return d.stats }

// Exec executes a statement and counts it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, query, time.Since(start), err)
	return err
}

// isSavepoint reports whether stmt is one of the savepoint statements Apply
// wraps script statements with.
func isSavepoint(stmt string) bool {
	return strings.HasSuffix(stmt, "SAVEPOINT "+savepoint)
}

func (d *StatsDriver) record(ctx context.Context, stmt string, took time.Duration, err error) {
	if isSavepoint(stmt) {
		d.stats.savepoints.Add(1)
		return
	}
	d.stats.duration.Add(int64(took))
	switch {
	case err == nil:
		d.stats.executed.Add(1)
	case IsExists(err):
		d.stats.existing.Add(1)
	default:
		d.stats.failed.Add(1)
	}
	if took > d.threshold {
		d.stats.slow.Add(1)
		if d.hook != nil {
			d.hook(ctx, stmt, took)
		}
	}
}

// Tx starts a transaction whose statements are counted as well.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, driver: d}, nil
}

type statsTx struct {
	dialect.Tx
	driver *StatsDriver
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.record(ctx, query, time.Since(start), err)
	return err
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
)
