package sqlbridge_test

import (
	"context"
	"sync"

	"github.com/syssam/sqlbridge"
	"github.com/syssam/sqlbridge/access"
)

// queryCall records one invocation of the query primitive.
type queryCall struct {
	opts  access.QueryOptions
	query string
	args  []any
}

// execCall records one invocation of the execute primitive.
type execCall struct {
	query string
	args  []any
}

// fakeHandle implements the Queryer and Execer capabilities and records
// every call.
type fakeHandle struct {
	mu       sync.Mutex
	queries  []queryCall
	execs    []execCall
	rows     access.Rows
	result   fakeResult
	queryErr error
	execErr  error
}

func (f *fakeHandle) Query(_ context.Context, opts access.QueryOptions, query string, args ...any) (access.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, queryCall{opts: opts, query: query, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeHandle) Exec(_ context.Context, query string, args ...any) (access.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, execCall{query: query, args: args})
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.result, nil
}

func (f *fakeHandle) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeHandle) execCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.execs)
}

type fakeResult struct {
	lastID   int64
	affected int64
}

func (r fakeResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

// fakePool adds the Acquirer and Transactor capabilities on top of
// fakeHandle and counts scope activity.
type fakePool struct {
	fakeHandle
	acquired   int
	released   int
	begun      int
	committed  int
	rolledBack int
	acquireErr error
	releaseErr error
}

func (p *fakePool) Acquire(context.Context) (access.Releaser, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return &fakePhysical{pool: p}, nil
}

func (p *fakePool) BeginTx(_ context.Context, _ access.TxOptions, body func(access.Handle) error) error {
	return p.runTx(body)
}

func (p *fakePool) runTx(body func(access.Handle) error) error {
	p.begun++
	tx := &fakeTx{}
	if err := body(tx); err != nil {
		p.rolledBack++
		return err
	}
	if tx.rollbackOnly {
		p.rolledBack++
		return nil
	}
	p.committed++
	return nil
}

// fakePhysical is a checked-out physical connection. Transactions begun
// on it reuse the connection rather than acquiring another one.
type fakePhysical struct {
	fakeHandle
	pool *fakePool
}

func (c *fakePhysical) Release() error {
	c.pool.released++
	return c.pool.releaseErr
}

func (c *fakePhysical) BeginTx(_ context.Context, _ access.TxOptions, body func(access.Handle) error) error {
	return c.pool.runTx(body)
}

// fakeTx is a transaction-scoped handle with a rollback-only flag.
type fakeTx struct {
	fakeHandle
	rollbackOnly bool
}

func (t *fakeTx) SetRollbackOnly()   { t.rollbackOnly = true }
func (t *fakeTx) ClearRollbackOnly() { t.rollbackOnly = false }
func (t *fakeTx) RollbackOnly() bool { return t.rollbackOnly }

// fakeStmt is a builder-produced statement stand-in.
type fakeStmt struct {
	op        sqlbridge.OpKind
	returning bool
	conn      *sqlbridge.Conn
	sql       string
	args      []any
	renderErr error
}

func (s fakeStmt) Op() sqlbridge.OpKind  { return s.op }
func (s fakeStmt) Returning() bool       { return s.returning }
func (s fakeStmt) Conn() *sqlbridge.Conn { return s.conn }
func (s fakeStmt) Render() (string, []any, error) {
	return s.sql, s.args, s.renderErr
}
