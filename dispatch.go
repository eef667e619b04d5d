package sqlbridge

import (
	"context"

	"github.com/syssam/sqlbridge/access"
)

// OpKind is the closed category of SQL statement a builder-produced
// statement belongs to.
type OpKind string

// Operation kinds understood by the dispatcher.
const (
	OpSelect                  OpKind = "select"
	OpIntersect               OpKind = "intersect"
	OpExcept                  OpKind = "except"
	OpUnion                   OpKind = "union"
	OpWith                    OpKind = "with"
	OpExplain                 OpKind = "explain"
	OpInsert                  OpKind = "insert"
	OpDelete                  OpKind = "delete"
	OpUpdate                  OpKind = "update"
	OpCopy                    OpKind = "copy"
	OpCreateTable             OpKind = "create-table"
	OpDropTable               OpKind = "drop-table"
	OpDropMaterializedView    OpKind = "drop-materialized-view"
	OpRefreshMaterializedView OpKind = "refresh-materialized-view"
	OpTruncate                OpKind = "truncate"
)

// Statement is the abstract, builder-produced representation of one SQL
// operation. The bridge never constructs or mutates statements; it reads
// the three metadata accessors and renders the statement when evaluating
// it.
type Statement interface {
	// Op returns the statement's operation kind.
	Op() OpKind
	// Returning reports whether the statement declares a RETURNING or
	// output clause.
	Returning() bool
	// Conn returns the connection context the statement was built against.
	Conn() *Conn
	// Render produces the SQL text and ordered bind parameters.
	Render() (string, []any, error)
}

// Result is the outcome of evaluating a statement: a row set for the
// query path, or an execute result for the side-effecting path.
type Result struct {
	rows access.Rows
	exec access.Result
}

// RowsReturned reports whether the statement went through the query path.
// An empty row set from a query still reports true.
func (r *Result) RowsReturned() bool { return r.exec == nil }

// Rows returns the query path's row set, nil for the execute path.
func (r *Result) Rows() access.Rows { return r.rows }

// RowsAffected returns the execute path's affected-row count.
// For the query path it returns the number of rows returned.
func (r *Result) RowsAffected() (int64, error) {
	if r.exec == nil {
		return int64(len(r.rows)), nil
	}
	return r.exec.RowsAffected()
}

// LastInsertId returns the execute path's generated key, when the driver
// reports one. It returns 0 for the query path.
func (r *Result) LastInsertId() (int64, error) {
	if r.exec == nil {
		return 0, nil
	}
	return r.exec.LastInsertId()
}

// Evaluate runs a built statement against the connection context it was
// built on. The operation kind decides the path:
//
//   - select, intersect, except, union, with, explain: always query
//   - insert, delete, update: query iff the statement declares a
//     RETURNING clause, execute otherwise
//   - copy, create-table, drop-table, drop-materialized-view,
//     refresh-materialized-view, truncate: always execute
//
// The query path merges the context's query options with its identifier
// transform, so every returned row's column names come back transformed.
// The execute path applies no transform. Any failure from the access
// layer or driver propagates verbatim.
func Evaluate(ctx context.Context, stmt Statement) (*Result, error) {
	c := stmt.Conn()
	if _, err := c.RawHandle(); err != nil {
		return nil, err
	}
	switch kind := stmt.Op(); kind {
	case OpSelect, OpIntersect, OpExcept, OpUnion, OpWith, OpExplain:
		return evaluateQuery(ctx, c, stmt)
	case OpInsert, OpDelete, OpUpdate:
		if stmt.Returning() {
			return evaluateQuery(ctx, c, stmt)
		}
		return evaluateExec(ctx, c, stmt)
	case OpCopy, OpCreateTable, OpDropTable, OpDropMaterializedView, OpRefreshMaterializedView, OpTruncate:
		return evaluateExec(ctx, c, stmt)
	default:
		return nil, &UnsupportedOperationError{Kind: kind}
	}
}

func evaluateQuery(ctx context.Context, c *Conn, stmt Statement) (*Result, error) {
	query, args, err := stmt.Render()
	if err != nil {
		return nil, err
	}
	rows, err := Query(ctx, c, c.mergedQueryOptions(), query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{rows: rows}, nil
}

func evaluateExec(ctx context.Context, c *Conn, stmt Statement) (*Result, error) {
	query, args, err := stmt.Render()
	if err != nil {
		return nil, err
	}
	res, err := Exec(ctx, c, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{exec: res}, nil
}
