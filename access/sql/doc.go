// Package sql adapts database/sql to the access-layer contract.
//
// The package provides three handle types, one per lifecycle stage:
//
//   - DB: a connection pool, the handle passed to sqlbridge.Open
//   - Conn: a physical connection checked out for a connection scope
//   - Tx: an in-flight transaction carrying the rollback-only flag
//
// All three implement the access capability interfaces, so the bridge's
// primitives work uniformly against any of them.
//
// # Opening a handle
//
//	db, err := sql.Open(access.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//	conn := sqlbridge.Open(db)
//
// # Observability
//
// NewStatsHandle and NewDebugHandle decorate any handle with statistics
// collection and statement logging. Decorated handles stay decorated
// across connection checkout and transaction scopes.
package sql
