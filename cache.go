package sqlbridge

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/sqlbridge/access"
)

// Cache is the interface for caching query-path results. Users should
// implement this interface with their preferred caching solution
// (e.g. Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}

// EvaluateCached evaluates stmt like Evaluate, serving the row sets of
// read-only statement kinds (select, intersect, except, union, with,
// explain) from cache. Statements of any other kind, including DML with a
// RETURNING clause, always evaluate live: they have side effects a cache
// hit would skip.
//
// Cached rows round-trip through msgpack, so driver-specific value types
// come back as their msgpack equivalents. Cache failures of any sort
// degrade to a live evaluation, never to an error.
func EvaluateCached(ctx context.Context, stmt Statement, cache Cache, ttl time.Duration) (*Result, error) {
	switch stmt.Op() {
	case OpSelect, OpIntersect, OpExcept, OpUnion, OpWith, OpExplain:
	default:
		return Evaluate(ctx, stmt)
	}
	query, args, err := stmt.Render()
	if err != nil {
		return nil, err
	}
	key, err := cacheKey(stmt.Op(), query, args)
	if err != nil {
		return Evaluate(ctx, stmt)
	}
	if data, err := cache.Get(ctx, key); err == nil && data != nil {
		var rows access.Rows
		if err := msgpack.Unmarshal(data, &rows); err == nil {
			return &Result{rows: rows}, nil
		}
		// Corrupted entry. Drop it and evaluate live.
		_ = cache.Delete(ctx, key)
	}
	res, err := Evaluate(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if data, err := msgpack.Marshal(res.Rows()); err == nil {
		_ = cache.Set(ctx, key, data, ttl)
	}
	return res, nil
}

// cacheKey derives a stable key from the rendered statement.
func cacheKey(kind OpKind, query string, args []any) (string, error) {
	enc, err := msgpack.Marshal(args)
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	h.Write([]byte(query))
	h.Write(enc)
	return fmt.Sprintf("sqlbridge:%s:%x", kind, h.Sum64()), nil
}
