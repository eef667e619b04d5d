package sqlbridge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlbridge"
	"github.com/syssam/sqlbridge/access"
)

// memCache is a minimal in-memory Cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	sets    int
	deletes int
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[key], nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.entries, key)
	return nil
}

func TestEvaluateCachedHit(t *testing.T) {
	t.Parallel()

	h := &fakeHandle{rows: access.Rows{{"name": "alice"}, {"name": "bob"}}}
	c := sqlbridge.Open(h)
	cache := newMemCache()
	stmt := fakeStmt{op: sqlbridge.OpSelect, conn: c, sql: "SELECT name FROM users"}

	res, err := sqlbridge.EvaluateCached(context.Background(), stmt, cache, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, h.rows, res.Rows())
	assert.Equal(t, 1, h.queryCount())
	assert.Equal(t, 1, cache.sets)

	// Second evaluation is served from cache.
	res, err = sqlbridge.EvaluateCached(context.Background(), stmt, cache, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, h.queryCount())
	require.Len(t, res.Rows(), 2)
	assert.Equal(t, "alice", res.Rows()[0]["name"])
	assert.Equal(t, "bob", res.Rows()[1]["name"])
}

func TestEvaluateCachedKeyedByStatement(t *testing.T) {
	t.Parallel()

	h := &fakeHandle{rows: access.Rows{{"n": "1"}}}
	c := sqlbridge.Open(h)
	cache := newMemCache()

	_, err := sqlbridge.EvaluateCached(context.Background(), fakeStmt{op: sqlbridge.OpSelect, conn: c, sql: "SELECT 1", args: []any{"a"}}, cache, 0)
	require.NoError(t, err)
	_, err = sqlbridge.EvaluateCached(context.Background(), fakeStmt{op: sqlbridge.OpSelect, conn: c, sql: "SELECT 1", args: []any{"b"}}, cache, 0)
	require.NoError(t, err)
	// Different bind params, different keys, two live evaluations.
	assert.Equal(t, 2, h.queryCount())
}

func TestEvaluateCachedSkipsSideEffects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		op        sqlbridge.OpKind
		returning bool
	}{
		{"insert", sqlbridge.OpInsert, false},
		{"insert_returning", sqlbridge.OpInsert, true},
		{"truncate", sqlbridge.OpTruncate, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &fakeHandle{}
			c := sqlbridge.Open(h)
			cache := newMemCache()
			stmt := fakeStmt{op: tt.op, returning: tt.returning, conn: c, sql: "STMT"}

			for i := 0; i < 2; i++ {
				_, err := sqlbridge.EvaluateCached(context.Background(), stmt, cache, time.Minute)
				require.NoError(t, err)
			}
			// Both runs hit the database, the cache is never consulted.
			assert.Equal(t, 2, h.queryCount()+h.execCount())
			assert.Equal(t, 0, cache.gets)
		})
	}
}

func TestEvaluateCachedGetFailure(t *testing.T) {
	t.Parallel()

	h := &fakeHandle{rows: access.Rows{{"n": "1"}}}
	c := sqlbridge.Open(h)
	cache := newMemCache()
	cache.getErr = assert.AnError
	stmt := fakeStmt{op: sqlbridge.OpSelect, conn: c, sql: "SELECT 1"}

	// Cache failure degrades to a live evaluation.
	res, err := sqlbridge.EvaluateCached(context.Background(), stmt, cache, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, h.rows, res.Rows())
	assert.Equal(t, 1, h.queryCount())
}

func TestEvaluateCachedCorruptedEntry(t *testing.T) {
	t.Parallel()

	h := &fakeHandle{rows: access.Rows{{"n": "1"}}}
	c := sqlbridge.Open(h)
	cache := newMemCache()
	stmt := fakeStmt{op: sqlbridge.OpSelect, conn: c, sql: "SELECT 1"}

	// Seed the statement's key with garbage.
	_, err := sqlbridge.EvaluateCached(context.Background(), stmt, cache, time.Minute)
	require.NoError(t, err)
	for key := range cache.entries {
		cache.entries[key] = []byte("not msgpack")
	}

	res, err := sqlbridge.EvaluateCached(context.Background(), stmt, cache, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, h.rows, res.Rows())
	assert.Equal(t, 2, h.queryCount())
	assert.Equal(t, 1, cache.deletes)
}
