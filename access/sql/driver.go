package sql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/syssam/sqlbridge/access"
)

// DB is an access.Handle backed by a database/sql connection pool.
// It is the pool-level handle callers pass to sqlbridge.Open.
type DB struct {
	db      *sql.DB
	dialect string
}

// Open wraps the database/sql.Open method and returns a *DB handle.
func Open(dialect, source string) (*DB, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return &DB{db: db, dialect: dialect}, nil
}

// OpenDB wraps the given database/sql.DB with a handle.
func OpenDB(dialect string, db *sql.DB) *DB {
	return &DB{db: db, dialect: dialect}
}

// DB returns the underlying *sql.DB instance.
func (d *DB) DB() *sql.DB { return d.db }

// Dialect returns the dialect name of the handle.
func (d *DB) Dialect() string {
	// If the underlying driver is wrapped with a telemetry driver.
	for _, name := range []string{access.MySQL, access.SQLite, access.Postgres} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Close closes the underlying connection pool.
func (d *DB) Close() error { return d.db.Close() }

// Query implements access.Queryer.
func (d *DB) Query(ctx context.Context, opts access.QueryOptions, query string, args ...any) (access.Rows, error) {
	return queryRows(ctx, d.db, opts, query, args)
}

// Exec implements access.Execer.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (access.Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

// Acquire implements access.Acquirer. The returned connection is pinned
// until Release is called.
func (d *DB) Acquire(ctx context.Context) (access.Releaser, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn, dialect: d.dialect}, nil
}

// BeginTx implements access.Transactor on the pool handle. A fresh
// connection is drawn from the pool for the duration of the transaction.
func (d *DB) BeginTx(ctx context.Context, opts access.TxOptions, body func(access.Handle) error) error {
	tx, err := d.db.BeginTx(ctx, txOptions(opts))
	if err != nil {
		return err
	}
	return runTx(tx, d.dialect, body)
}

// Tables implements access.Inspector.
func (d *DB) Tables(ctx context.Context) ([]access.Table, error) {
	return listTables(ctx, d.db, d.Dialect())
}

// Conn is a physical connection checked out of a DB. It implements
// access.Releaser; Release returns the connection to the pool.
type Conn struct {
	conn    *sql.Conn
	dialect string
}

// Dialect returns the dialect name of the handle.
func (c *Conn) Dialect() string { return c.dialect }

// Query implements access.Queryer.
func (c *Conn) Query(ctx context.Context, opts access.QueryOptions, query string, args ...any) (access.Rows, error) {
	return queryRows(ctx, c.conn, opts, query, args)
}

// Exec implements access.Execer.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (access.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// Release implements access.Releaser.
func (c *Conn) Release() error { return c.conn.Close() }

// BeginTx implements access.Transactor. The transaction runs on this
// physical connection; no second connection is acquired.
func (c *Conn) BeginTx(ctx context.Context, opts access.TxOptions, body func(access.Handle) error) error {
	tx, err := c.conn.BeginTx(ctx, txOptions(opts))
	if err != nil {
		return err
	}
	return runTx(tx, c.dialect, body)
}

// Tables implements access.Inspector.
func (c *Conn) Tables(ctx context.Context) ([]access.Table, error) {
	return listTables(ctx, c.conn, c.Dialect())
}

// Tx is an in-flight transaction handle.
type Tx struct {
	tx           *sql.Tx
	dialect      string
	rollbackOnly atomic.Bool
}

// Dialect returns the dialect name of the handle.
func (t *Tx) Dialect() string { return t.dialect }

// Query implements access.Queryer.
func (t *Tx) Query(ctx context.Context, opts access.QueryOptions, query string, args ...any) (access.Rows, error) {
	return queryRows(ctx, t.tx, opts, query, args)
}

// Exec implements access.Execer.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (access.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// BeginTx implements access.Transactor. Transactions do not nest.
func (t *Tx) BeginTx(context.Context, access.TxOptions, func(access.Handle) error) error {
	return access.ErrTxStarted
}

// SetRollbackOnly implements access.RollbackState.
func (t *Tx) SetRollbackOnly() { t.rollbackOnly.Store(true) }

// ClearRollbackOnly implements access.RollbackState.
func (t *Tx) ClearRollbackOnly() { t.rollbackOnly.Store(false) }

// RollbackOnly implements access.RollbackState.
func (t *Tx) RollbackOnly() bool { return t.rollbackOnly.Load() }

// Tables implements access.Inspector.
func (t *Tx) Tables(ctx context.Context) ([]access.Table, error) {
	return listTables(ctx, t.tx, t.Dialect())
}

// execQuerier is the subset of database/sql methods shared by
// sql.DB, sql.Conn and sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryRows runs the query and scans the full result set into access.Rows,
// transforming column names through the identifiers option.
func queryRows(ctx context.Context, q execQuerier, opts access.QueryOptions, query string, args []any) (rs access.Rows, err error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			rs, err = nil, cerr
		}
	}()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = opts.Transform(col)
	}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(access.Row, len(cols))
		for i, name := range names {
			row[name] = vals[i]
		}
		rs = append(rs, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// runTx drives the transaction lifecycle around body: commit on normal
// return unless rollback-only was set, rollback otherwise. A rollback
// failure never masks the body failure that triggered it.
func runTx(tx *sql.Tx, dialect string, body func(access.Handle) error) error {
	t := &Tx{tx: tx, dialect: dialect}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := body(t); err != nil {
		if rberr := tx.Rollback(); rberr != nil {
			return errors.Join(err, rberr)
		}
		return err
	}
	if t.rollbackOnly.Load() {
		return tx.Rollback()
	}
	return tx.Commit()
}

func txOptions(opts access.TxOptions) *sql.TxOptions {
	return &sql.TxOptions{Isolation: opts.Isolation, ReadOnly: opts.ReadOnly}
}

var (
	_ access.Queryer       = (*DB)(nil)
	_ access.Execer        = (*DB)(nil)
	_ access.Acquirer      = (*DB)(nil)
	_ access.Transactor    = (*DB)(nil)
	_ access.Inspector     = (*DB)(nil)
	_ access.Queryer       = (*Conn)(nil)
	_ access.Execer        = (*Conn)(nil)
	_ access.Releaser      = (*Conn)(nil)
	_ access.Transactor    = (*Conn)(nil)
	_ access.Inspector     = (*Conn)(nil)
	_ access.Queryer       = (*Tx)(nil)
	_ access.Execer        = (*Tx)(nil)
	_ access.Transactor    = (*Tx)(nil)
	_ access.RollbackState = (*Tx)(nil)
	_ access.Inspector     = (*Tx)(nil)
)
