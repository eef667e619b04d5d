// Package sqlbridge executes builder-produced SQL statements through a
// generic database access layer.
//
// A SQL statement builder produces abstract statement values that must be
// evaluated to run. The access layer expects a raw connection handle, not
// a statement. This package bridges the two: it carries the handle and
// bridge configuration in an immutable connection context (Conn), scopes
// physical connections and transactions around callers' code, and
// dispatches each evaluated statement to the query or execute primitive
// based on its operation kind.
//
// # Connection Context
//
// Open wraps an access-layer handle:
//
//	db, _ := sqlaccess.Open(access.Postgres, dsn)
//	conn := sqlbridge.Open(db)
//
// A Conn is immutable. Deriving a context for a scoped connection or a
// transaction produces a new value via WithHandle; the original is never
// mutated and may be shared freely between goroutines.
//
// # Scopes
//
// WithConnection pins one physical connection for the duration of body;
// WithTransaction runs body inside a transaction, committing on normal
// return unless SetRollbackOnly was called:
//
//	err := sqlbridge.WithTransaction(ctx, conn, access.TxOptions{}, func(tx *sqlbridge.Conn) error {
//	    if _, err := sqlbridge.Evaluate(ctx, stmtBuiltAgainst(tx)); err != nil {
//	        return err
//	    }
//	    return nil
//	})
//
// Resource teardown runs on every exit path, and a teardown failure never
// masks the failure that triggered it.
//
// # Evaluation
//
// Evaluate inspects the statement's operation kind: select-like kinds go
// through the query path, DDL-like kinds through the execute path, and
// insert/update/delete follow their RETURNING clause. Column names of
// returned rows pass through the context's identifier transform
// (default: lower-case with underscores replaced by hyphens).
package sqlbridge
