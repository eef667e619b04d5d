package sqlbridge

import (
	"context"
	"errors"

	"github.com/syssam/sqlbridge/access"
)

// WithConnection acquires one physical connection from the context's
// handle, derives a context bound to it, and runs body with the derived
// context. The connection is released on every exit path; a release
// failure never masks body's failure, the two are chained with
// errors.Join.
//
// Statements evaluated against the derived context, including nested
// WithTransaction scopes, all run on the single acquired connection.
func WithConnection(ctx context.Context, c *Conn, body func(*Conn) error) (rerr error) {
	pc, err := Acquire(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		rerr = errors.Join(rerr, access.Release(pc))
	}()
	return body(c.WithHandle(pc))
}

// WithTransaction runs body inside a transaction on the context's handle.
// The access layer owns the transaction lifecycle: it acquires a
// connection, or reuses the one already pinned by an enclosing
// WithConnection scope, begins, and commits on normal return unless
// SetRollbackOnly was called on the derived context, rolling back
// otherwise. Statements evaluated against the derived context execute on
// the transaction's handle, not the outer one.
func WithTransaction(ctx context.Context, c *Conn, opts access.TxOptions, body func(*Conn) error) error {
	return beginTx(ctx, c, opts, func(txh access.Handle) error {
		return body(c.WithHandle(txh))
	})
}
