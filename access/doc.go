// Package access defines the contract the bridge expects from a
// database access layer.
//
// The bridge itself never talks to a driver. It evaluates builder-produced
// statements against an opaque Handle, and every database interaction goes
// through one of the package-level primitives defined here: Query, Exec,
// Acquire, Release, BeginTx, the rollback-only flag accessors, and Tables.
// Each primitive takes the handle as its first value argument and asserts
// the capability interface it needs, so an access-layer implementation
// opts into exactly the operations it supports.
//
// # Handles
//
// A Handle may denote three different things over its lifetime:
//
//   - a connection spec or pool (the value passed to sqlbridge.Open),
//   - a physical connection acquired for a connection scope,
//   - an in-flight transaction.
//
// The bridge treats all three uniformly; scoping and reuse rules live in
// the implementation behind the capability interfaces.
//
// # Capability Interfaces
//
// The primitives dispatch on the following interfaces:
//
//	Queryer        row-returning statements
//	Execer         side-effecting statements
//	Acquirer       physical-connection checkout
//	Transactor     body-style transactions (commit/rollback owned by the
//	               implementation)
//	RollbackState  per-transaction rollback-only flag
//	Inspector      table/view metadata
//
// # Implementations
//
// The access/sql sub-package adapts database/sql to this contract and is
// the implementation used by the rest of the module. Any other storage
// layer can participate by implementing the interfaces above.
package access
