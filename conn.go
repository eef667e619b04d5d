package sqlbridge

import (
	"maps"

	"github.com/syssam/sqlbridge/access"
)

// Conn is the bridge's connection context: an immutable carrier of an
// access-layer handle plus bridge configuration. It never owns the
// physical connection behind the handle, it only references it.
//
// A Conn may be shared and read by any number of goroutines. Deriving a
// context (WithHandle, or the scope functions) always produces a new
// value; the original is never mutated.
type Conn struct {
	handle      access.Handle
	identifiers func(string) string
	queryOpts   access.QueryOptions
}

// Option configures a Conn at Open time.
type Option func(*Conn)

// WithIdentifiers sets the identifier transform applied to column names
// of rows returned by the query path. Default is KebabIdentifiers.
func WithIdentifiers(f func(string) string) Option {
	return func(c *Conn) {
		c.identifiers = f
	}
}

// WithQueryOptions sets options merged into every row-returning call.
func WithQueryOptions(opts access.QueryOptions) Option {
	return func(c *Conn) {
		c.queryOpts = maps.Clone(opts)
	}
}

// Open constructs the base connection context around an access-layer
// handle. Unset options take defaults: KebabIdentifiers and empty query
// options.
func Open(h access.Handle, opts ...Option) *Conn {
	c := &Conn{
		handle:      h,
		identifiers: KebabIdentifiers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHandle returns a new context sharing c's configuration but
// replacing the handle. c is left untouched.
func (c *Conn) WithHandle(h access.Handle) *Conn {
	derived := *c
	derived.handle = h
	return &derived
}

// RawHandle returns the access-layer handle the context wraps. It fails
// with ErrInvalidContext if the context is malformed; misuse indicates a
// programming error upstream.
func (c *Conn) RawHandle() (access.Handle, error) {
	if c == nil || c.handle == nil {
		return nil, ErrInvalidContext
	}
	return c.handle, nil
}

// Identifiers returns the context's identifier transform.
func (c *Conn) Identifiers() func(string) string {
	return c.identifiers
}

// QueryOptions returns a copy of the context's query options.
func (c *Conn) QueryOptions() access.QueryOptions {
	return maps.Clone(c.queryOpts)
}

// mergedQueryOptions combines the context's query options with the
// identifiers entry consumed by the query primitive.
func (c *Conn) mergedQueryOptions() access.QueryOptions {
	merged := make(access.QueryOptions, len(c.queryOpts)+1)
	maps.Copy(merged, c.queryOpts)
	merged[access.Identifiers] = c.identifiers
	return merged
}
