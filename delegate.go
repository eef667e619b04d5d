package sqlbridge

import (
	"context"

	"github.com/syssam/sqlbridge/access"
)

// This file is the bridge's delegate table. Every access-layer primitive
// takes the raw handle as its first value argument; the forward
// combinators below lift such a primitive into a same-shaped bridge
// function whose first value argument is a *Conn instead. The produced
// function unwraps the context via RawHandle and forwards all remaining
// arguments positionally, a variadic tail included. Adding a bridge
// function for a new primitive means picking the combinator matching its
// shape, not writing new forwarding logic.

// forward lifts a primitive with no extra parameters.
func forward[R any](prim func(context.Context, access.Handle) (R, error)) func(context.Context, *Conn) (R, error) {
	return func(ctx context.Context, c *Conn) (R, error) {
		h, err := c.RawHandle()
		if err != nil {
			var zero R
			return zero, err
		}
		return prim(ctx, h)
	}
}

// forward1V lifts a primitive with one fixed parameter and a variadic tail.
func forward1V[A, V, R any](prim func(context.Context, access.Handle, A, ...V) (R, error)) func(context.Context, *Conn, A, ...V) (R, error) {
	return func(ctx context.Context, c *Conn, a A, tail ...V) (R, error) {
		h, err := c.RawHandle()
		if err != nil {
			var zero R
			return zero, err
		}
		return prim(ctx, h, a, tail...)
	}
}

// forward2V lifts a primitive with two fixed parameters and a variadic tail.
func forward2V[A, B, V, R any](prim func(context.Context, access.Handle, A, B, ...V) (R, error)) func(context.Context, *Conn, A, B, ...V) (R, error) {
	return func(ctx context.Context, c *Conn, a A, b B, tail ...V) (R, error) {
		h, err := c.RawHandle()
		if err != nil {
			var zero R
			return zero, err
		}
		return prim(ctx, h, a, b, tail...)
	}
}

// forward2E lifts a primitive with two fixed parameters returning only an error.
func forward2E[A, B any](prim func(context.Context, access.Handle, A, B) error) func(context.Context, *Conn, A, B) error {
	return func(ctx context.Context, c *Conn, a A, b B) error {
		h, err := c.RawHandle()
		if err != nil {
			return err
		}
		return prim(ctx, h, a, b)
	}
}

// forwardState lifts a context-free transaction-state primitive.
func forwardState[R any](prim func(access.Handle) (R, error)) func(*Conn) (R, error) {
	return func(c *Conn) (R, error) {
		h, err := c.RawHandle()
		if err != nil {
			var zero R
			return zero, err
		}
		return prim(h)
	}
}

// forwardStateE is forwardState for primitives returning only an error.
func forwardStateE(prim func(access.Handle) error) func(*Conn) error {
	return func(c *Conn) error {
		h, err := c.RawHandle()
		if err != nil {
			return err
		}
		return prim(h)
	}
}

// Bridge functions mirroring the access-layer primitives, produced once
// at process start by the forwarding table above.
var (
	// Query runs a row-returning statement against the context's handle.
	Query = forward2V(access.Query)

	// Exec runs a side-effecting statement against the context's handle.
	Exec = forward1V(access.Exec)

	// Acquire checks a physical connection out of the context's handle.
	// Prefer WithConnection, which guarantees the release.
	Acquire = forward(access.Acquire)

	// Tables lists the tables and views visible through the context's handle.
	Tables = forward(access.Tables)

	// beginTx forwards to the access layer's transaction primitive.
	// WithTransaction is the public surface; it rebuilds the context
	// around the transaction-scoped handle before running the body.
	beginTx = forward2E(access.BeginTx)

	// SetRollbackOnly marks the transaction the context runs in as
	// rollback-only. It must be called on a context derived by
	// WithTransaction.
	SetRollbackOnly = forwardStateE(access.SetRollbackOnly)

	// ClearRollbackOnly clears the rollback-only mark.
	ClearRollbackOnly = forwardStateE(access.ClearRollbackOnly)

	// IsRollbackOnly reports whether the transaction the context runs in
	// is marked rollback-only.
	IsRollbackOnly = forwardState(access.IsRollbackOnly)
)
