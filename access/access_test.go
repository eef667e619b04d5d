package access_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlbridge/access"
)

func TestQueryOptionsTransform(t *testing.T) {
	t.Parallel()

	var opts access.QueryOptions
	assert.Equal(t, "CREATED_AT", opts.Transform("CREATED_AT"), "nil options pass names through")

	opts = access.QueryOptions{access.Identifiers: strings.ToLower}
	assert.Equal(t, "created_at", opts.Transform("CREATED_AT"))

	opts = access.QueryOptions{access.Identifiers: "not a func"}
	assert.Equal(t, "CREATED_AT", opts.Transform("CREATED_AT"), "wrong value type is ignored")
}

func TestPrimitivesRejectIncapableHandles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := struct{}{} // no capabilities at all

	_, err := access.Query(ctx, h, nil, "SELECT 1")
	require.ErrorContains(t, err, "does not support query")

	_, err = access.Exec(ctx, h, "DELETE FROM t")
	require.ErrorContains(t, err, "does not support exec")

	_, err = access.Acquire(ctx, h)
	require.ErrorContains(t, err, "does not support connection acquisition")

	err = access.Release(h)
	require.ErrorContains(t, err, "is not a physical connection")

	err = access.BeginTx(ctx, h, access.TxOptions{}, func(access.Handle) error { return nil })
	require.ErrorContains(t, err, "does not support transactions")

	err = access.SetRollbackOnly(h)
	require.ErrorContains(t, err, "does not carry transaction state")

	_, err = access.IsRollbackOnly(h)
	require.ErrorContains(t, err, "does not carry transaction state")

	_, err = access.Tables(ctx, h)
	require.ErrorContains(t, err, "does not support metadata retrieval")
}
