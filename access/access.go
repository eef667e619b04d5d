package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect names understood by the access/sql implementation.
const (
	// Postgres is the dialect name for PostgreSQL.
	Postgres = "postgres"
	// MySQL is the dialect name for MySQL/MariaDB.
	MySQL = "mysql"
	// SQLite is the dialect name for SQLite.
	SQLite = "sqlite"
)

// ErrTxStarted is returned when attempting to start a new transaction
// on a handle that already denotes an in-flight transaction.
var ErrTxStarted = errors.New("access: cannot start a transaction within a transaction")

// Identifiers is the QueryOptions key holding the column-name transform.
// Its value must be a func(string) string.
const Identifiers = "identifiers"

// Handle is an opaque connection spec, physical connection, or transaction
// owned by an access-layer implementation. The bridge never inspects it
// beyond the capability interfaces below.
type Handle = any

// Row is a single result row keyed by (transformed) column name.
type Row map[string]any

// Rows is an ordered result set.
type Rows []Row

// QueryOptions carries per-call options for row-returning statements.
// Implementations must honor the Identifiers key; unrecognized keys are
// passed through untouched for implementation-specific use.
type QueryOptions map[string]any

// Transform applies the identifiers option to a column name. Without the
// option the name is returned unchanged.
func (o QueryOptions) Transform(name string) string {
	if f, ok := o[Identifiers].(func(string) string); ok && f != nil {
		return f(name)
	}
	return name
}

// Result reports the outcome of a side-effecting statement.
// It mirrors database/sql.Result.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// TxOptions holds the transaction options accepted by BeginTx.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// Table describes one table or view reported by an Inspector.
type Table struct {
	Schema string
	Name   string
	Type   string // "table" or "view"
}

// Queryer executes row-returning statements.
type Queryer interface {
	Query(ctx context.Context, opts QueryOptions, query string, args ...any) (Rows, error)
}

// Execer executes side-effecting statements.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
}

// Releaser is a physical connection that must be returned to its pool.
type Releaser interface {
	Release() error
}

// Acquirer checks a physical connection out of the handle.
type Acquirer interface {
	Acquire(ctx context.Context) (Releaser, error)
}

// Transactor runs body inside a transaction. The implementation owns the
// whole transaction lifecycle: it acquires or reuses a connection, begins,
// passes the transaction-scoped handle to body, and commits on normal
// return unless the rollback-only flag is set, rolling back otherwise.
// A rollback triggered by a body failure must not mask that failure; the
// two are chained with errors.Join.
type Transactor interface {
	BeginTx(ctx context.Context, opts TxOptions, body func(Handle) error) error
}

// RollbackState exposes the per-transaction rollback-only flag.
type RollbackState interface {
	SetRollbackOnly()
	ClearRollbackOnly()
	RollbackOnly() bool
}

// Inspector reports table and view metadata.
type Inspector interface {
	Tables(ctx context.Context) ([]Table, error)
}

// Query runs a row-returning statement on h.
func Query(ctx context.Context, h Handle, opts QueryOptions, query string, args ...any) (Rows, error) {
	q, ok := h.(Queryer)
	if !ok {
		return nil, fmt.Errorf("access: handle type %T does not support query", h)
	}
	return q.Query(ctx, opts, query, args...)
}

// Exec runs a side-effecting statement on h.
func Exec(ctx context.Context, h Handle, query string, args ...any) (Result, error) {
	e, ok := h.(Execer)
	if !ok {
		return nil, fmt.Errorf("access: handle type %T does not support exec", h)
	}
	return e.Exec(ctx, query, args...)
}

// Acquire checks a physical connection out of h.
func Acquire(ctx context.Context, h Handle) (Releaser, error) {
	a, ok := h.(Acquirer)
	if !ok {
		return nil, fmt.Errorf("access: handle type %T does not support connection acquisition", h)
	}
	return a.Acquire(ctx)
}

// Release returns a physical connection to its pool.
func Release(h Handle) error {
	r, ok := h.(Releaser)
	if !ok {
		return fmt.Errorf("access: handle type %T is not a physical connection", h)
	}
	return r.Release()
}

// BeginTx runs body inside a transaction on h. See Transactor.
func BeginTx(ctx context.Context, h Handle, opts TxOptions, body func(Handle) error) error {
	t, ok := h.(Transactor)
	if !ok {
		return fmt.Errorf("access: handle type %T does not support transactions", h)
	}
	return t.BeginTx(ctx, opts, body)
}

// SetRollbackOnly marks the transaction behind h as rollback-only.
func SetRollbackOnly(h Handle) error {
	s, ok := h.(RollbackState)
	if !ok {
		return fmt.Errorf("access: handle type %T does not carry transaction state", h)
	}
	s.SetRollbackOnly()
	return nil
}

// ClearRollbackOnly clears the rollback-only mark on the transaction behind h.
func ClearRollbackOnly(h Handle) error {
	s, ok := h.(RollbackState)
	if !ok {
		return fmt.Errorf("access: handle type %T does not carry transaction state", h)
	}
	s.ClearRollbackOnly()
	return nil
}

// IsRollbackOnly reports whether the transaction behind h is rollback-only.
func IsRollbackOnly(h Handle) (bool, error) {
	s, ok := h.(RollbackState)
	if !ok {
		return false, fmt.Errorf("access: handle type %T does not carry transaction state", h)
	}
	return s.RollbackOnly(), nil
}

// Tables lists the tables and views visible through h.
func Tables(ctx context.Context, h Handle) ([]Table, error) {
	i, ok := h.(Inspector)
	if !ok {
		return nil, fmt.Errorf("access: handle type %T does not support metadata retrieval", h)
	}
	return i.Tables(ctx)
}
