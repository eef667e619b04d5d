package profile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlbridge"
	"github.com/syssam/sqlbridge/access"
	"github.com/syssam/sqlbridge/profile"
)

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeProfiles(t, `
analytics:
  dialect: postgres
  dsn: postgres://app@db/analytics
  identifiers: snake
  max_open_conns: 8
  query_options:
    fetch-size: 500
warehouse:
  dialect: sqlite
  dsn: file:warehouse.db
`)
	profiles, err := profile.Load(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	p := profiles["analytics"]
	assert.Equal(t, access.Postgres, p.Dialect)
	assert.Equal(t, "postgres://app@db/analytics", p.DSN)
	assert.Equal(t, "snake", p.Identifiers)
	assert.Equal(t, 8, p.MaxOpenConns)
	assert.Equal(t, 500, p.QueryOptions["fetch-size"])

	assert.Equal(t, access.SQLite, profiles["warehouse"].Dialect)
	assert.Empty(t, profiles["warehouse"].Identifiers)
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	t.Run("unknown_dialect", func(t *testing.T) {
		t.Parallel()
		path := writeProfiles(t, "bad:\n  dialect: oracle\n  dsn: x\n")
		_, err := profile.Load(path)
		require.ErrorContains(t, err, `unknown dialect "oracle"`)
	})

	t.Run("missing_dsn", func(t *testing.T) {
		t.Parallel()
		path := writeProfiles(t, "bad:\n  dialect: sqlite\n")
		_, err := profile.Load(path)
		require.ErrorContains(t, err, "missing dsn")
	})

	t.Run("unknown_identifiers", func(t *testing.T) {
		t.Parallel()
		path := writeProfiles(t, "bad:\n  dialect: sqlite\n  dsn: x\n  identifiers: shouty\n")
		_, err := profile.Load(path)
		require.ErrorContains(t, err, `unknown identifiers style "shouty"`)
	})

	t.Run("not_yaml", func(t *testing.T) {
		t.Parallel()
		path := writeProfiles(t, "{{nope")
		_, err := profile.Load(path)
		require.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	path := writeProfiles(t, `
local:
  dialect: sqlite
  dsn: file:`+dbPath+`
  identifiers: snake
`)
	conn, db, err := profile.Open(path, "local")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "created_at", conn.Identifiers()("CREATED_AT"))

	rows, err := sqlbridge.Query(context.Background(), conn, nil, "SELECT 1 AS one")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestOpenUnknownProfile(t *testing.T) {
	t.Parallel()

	path := writeProfiles(t, "local:\n  dialect: sqlite\n  dsn: file:x.db\n")
	_, _, err := profile.Open(path, "missing")
	require.ErrorContains(t, err, `"missing" not found`)
}
