package sql

import (
	"context"
	"fmt"

	"github.com/syssam/sqlbridge/access"
)

// listTables retrieves table and view descriptors for the given dialect.
// Column names and types are normalized so callers see the same shape
// regardless of backend.
func listTables(ctx context.Context, q execQuerier, dialect string) ([]access.Table, error) {
	var query string
	switch dialect {
	case access.Postgres:
		query = `SELECT table_schema, table_name, table_type
			FROM information_schema.tables
			WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
			ORDER BY table_schema, table_name`
	case access.MySQL:
		query = `SELECT table_schema, table_name, table_type
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			ORDER BY table_name`
	case access.SQLite:
		query = `SELECT '' AS table_schema, name AS table_name,
			CASE type WHEN 'view' THEN 'VIEW' ELSE 'BASE TABLE' END AS table_type
			FROM sqlite_master
			WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
			ORDER BY name`
	default:
		return nil, fmt.Errorf("sqlbridge/access/sql: unsupported dialect %q for metadata retrieval", dialect)
	}
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []access.Table
	for rows.Next() {
		var t access.Table
		if err := rows.Scan(&t.Schema, &t.Name, &t.Type); err != nil {
			return nil, err
		}
		t.Type = normalizeTableType(t.Type)
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

func normalizeTableType(s string) string {
	switch s {
	case "VIEW", "SYSTEM VIEW", "view":
		return "view"
	default:
		return "table"
	}
}
