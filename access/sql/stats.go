package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/sqlbridge/access"
)

// QueryStats holds statement execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of row-returning statements executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of side-effecting statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of statement errors.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of statement statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the average statement duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsHandle wraps an access.Handle with statement statistics collection.
// It implements every capability interface by forwarding to the wrapped
// handle; transaction-scoped handles handed to BeginTx bodies are wrapped
// as well, so statements inside transactions are counted too.
type StatsHandle struct {
	h             access.Handle
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures a StatsHandle.
type StatsOption func(*StatsHandle)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsHandle) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsHandle) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the default slog logger.
// This is a convenience wrapper around WithSlowQueryHook.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(_ context.Context, query string, args []any, duration time.Duration) {
		slog.Warn("slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsHandle wraps h with statistics collection.
//
// Example:
//
//	db, _ := sql.Open(access.Postgres, dsn)
//	h := sql.NewStatsHandle(db,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(),
//	)
//	conn := sqlbridge.Open(h)
//
//	// Later, check statistics:
//	fmt.Println(h.QueryStats().Stats())
func NewStatsHandle(h access.Handle, opts ...StatsOption) *StatsHandle {
	s := &StatsHandle{
		h:             h,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (s *StatsHandle) QueryStats() *QueryStats {
	return s.stats
}

// SlowThreshold returns the current slow statement threshold.
func (s *StatsHandle) SlowThreshold() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slowThreshold
}

// SetSlowThreshold updates the slow statement threshold.
func (s *StatsHandle) SetSlowThreshold(threshold time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowThreshold = threshold
}

// rewrap produces a decorator around a derived handle sharing this
// handle's statistics and configuration.
func (s *StatsHandle) rewrap(h access.Handle) *StatsHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &StatsHandle{
		h:             h,
		stats:         s.stats,
		slowThreshold: s.slowThreshold,
		slowHook:      s.slowHook,
	}
}

func (s *StatsHandle) record(ctx context.Context, query string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		s.stats.TotalQueries.Add(1)
	} else {
		s.stats.TotalExecs.Add(1)
	}
	s.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		s.stats.Errors.Add(1)
	}

	s.mu.RLock()
	threshold := s.slowThreshold
	hook := s.slowHook
	s.mu.RUnlock()

	if duration > threshold {
		s.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, args, duration)
		}
	}
}

// Query implements access.Queryer and records statistics.
func (s *StatsHandle) Query(ctx context.Context, opts access.QueryOptions, query string, args ...any) (access.Rows, error) {
	start := time.Now()
	rows, err := access.Query(ctx, s.h, opts, query, args...)
	s.record(ctx, query, args, start, err, true)
	return rows, err
}

// Exec implements access.Execer and records statistics.
func (s *StatsHandle) Exec(ctx context.Context, query string, args ...any) (access.Result, error) {
	start := time.Now()
	res, err := access.Exec(ctx, s.h, query, args...)
	s.record(ctx, query, args, start, err, false)
	return res, err
}

// Acquire implements access.Acquirer. The checked-out connection keeps
// recording into the same statistics.
func (s *StatsHandle) Acquire(ctx context.Context) (access.Releaser, error) {
	conn, err := access.Acquire(ctx, s.h)
	if err != nil {
		return nil, err
	}
	return s.rewrap(conn), nil
}

// Release implements access.Releaser when the wrapped handle is a
// physical connection.
func (s *StatsHandle) Release() error {
	return access.Release(s.h)
}

// BeginTx implements access.Transactor. The transaction-scoped handle
// passed to body records into the same statistics.
func (s *StatsHandle) BeginTx(ctx context.Context, opts access.TxOptions, body func(access.Handle) error) error {
	return access.BeginTx(ctx, s.h, opts, func(txh access.Handle) error {
		return body(s.rewrap(txh))
	})
}

// SetRollbackOnly implements access.RollbackState.
func (s *StatsHandle) SetRollbackOnly() {
	_ = access.SetRollbackOnly(s.h)
}

// ClearRollbackOnly implements access.RollbackState.
func (s *StatsHandle) ClearRollbackOnly() {
	_ = access.ClearRollbackOnly(s.h)
}

// RollbackOnly implements access.RollbackState.
func (s *StatsHandle) RollbackOnly() bool {
	ro, _ := access.IsRollbackOnly(s.h)
	return ro
}

// Tables implements access.Inspector.
func (s *StatsHandle) Tables(ctx context.Context) ([]access.Table, error) {
	return access.Tables(ctx, s.h)
}

// DebugHandle wraps an access.Handle with statement logging.
type DebugHandle struct {
	h   access.Handle
	log func(context.Context, ...any)
}

// DebugOption configures a DebugHandle.
type DebugOption func(*DebugHandle)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugHandle) {
		d.log = logFunc
	}
}

// NewDebugHandle wraps h with statement logging. By default statements
// are logged through slog at info level.
func NewDebugHandle(h access.Handle, opts ...DebugOption) *DebugHandle {
	d := &DebugHandle{
		h: h,
		log: func(_ context.Context, v ...any) {
			slog.Info(fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query implements access.Queryer and logs the statement.
func (d *DebugHandle) Query(ctx context.Context, opts access.QueryOptions, query string, args ...any) (access.Rows, error) {
	d.log(ctx, fmt.Sprintf("query: %s args: %v", query, args))
	return access.Query(ctx, d.h, opts, query, args...)
}

// Exec implements access.Execer and logs the statement.
func (d *DebugHandle) Exec(ctx context.Context, query string, args ...any) (access.Result, error) {
	d.log(ctx, fmt.Sprintf("exec: %s args: %v", query, args))
	return access.Exec(ctx, d.h, query, args...)
}

// Acquire implements access.Acquirer.
func (d *DebugHandle) Acquire(ctx context.Context) (access.Releaser, error) {
	d.log(ctx, "acquire connection")
	conn, err := access.Acquire(ctx, d.h)
	if err != nil {
		return nil, err
	}
	return &DebugHandle{h: conn, log: d.log}, nil
}

// Release implements access.Releaser when the wrapped handle is a
// physical connection.
func (d *DebugHandle) Release() error {
	d.log(context.Background(), "release connection")
	return access.Release(d.h)
}

// BeginTx implements access.Transactor and logs the transaction boundaries.
func (d *DebugHandle) BeginTx(ctx context.Context, opts access.TxOptions, body func(access.Handle) error) error {
	d.log(ctx, "begin transaction")
	err := access.BeginTx(ctx, d.h, opts, func(txh access.Handle) error {
		return body(&DebugHandle{h: txh, log: d.log})
	})
	d.log(ctx, fmt.Sprintf("end transaction err: %v", err))
	return err
}

// SetRollbackOnly implements access.RollbackState.
func (d *DebugHandle) SetRollbackOnly() {
	d.log(context.Background(), "set rollback-only")
	_ = access.SetRollbackOnly(d.h)
}

// ClearRollbackOnly implements access.RollbackState.
func (d *DebugHandle) ClearRollbackOnly() {
	d.log(context.Background(), "clear rollback-only")
	_ = access.ClearRollbackOnly(d.h)
}

// RollbackOnly implements access.RollbackState.
func (d *DebugHandle) RollbackOnly() bool {
	ro, _ := access.IsRollbackOnly(d.h)
	return ro
}

// Tables implements access.Inspector.
func (d *DebugHandle) Tables(ctx context.Context) ([]access.Table, error) {
	return access.Tables(ctx, d.h)
}

// Ensure interfaces are implemented.
var (
	_ access.Queryer       = (*StatsHandle)(nil)
	_ access.Execer        = (*StatsHandle)(nil)
	_ access.Acquirer      = (*StatsHandle)(nil)
	_ access.Transactor    = (*StatsHandle)(nil)
	_ access.RollbackState = (*StatsHandle)(nil)
	_ access.Inspector     = (*StatsHandle)(nil)
	_ access.Queryer       = (*DebugHandle)(nil)
	_ access.Execer        = (*DebugHandle)(nil)
	_ access.Acquirer      = (*DebugHandle)(nil)
	_ access.Transactor    = (*DebugHandle)(nil)
	_ access.RollbackState = (*DebugHandle)(nil)
	_ access.Inspector     = (*DebugHandle)(nil)
)
