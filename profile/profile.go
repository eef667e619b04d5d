// Package profile opens bridge connection contexts from a YAML profiles
// file. A profiles file maps profile names to connection settings:
//
//	analytics:
//	  dialect: postgres
//	  dsn: postgres://app@db/analytics
//	  identifiers: kebab
//	  max_open_conns: 8
//	warehouse:
//	  dialect: sqlite
//	  dsn: file:warehouse.db
//	  identifiers: snake
//
// Importing this package registers the postgres (lib/pq), mysql and
// sqlite (modernc.org) drivers.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlbridge"
	"github.com/syssam/sqlbridge/access"
	sqlaccess "github.com/syssam/sqlbridge/access/sql"

	// Drivers for the dialects a profile may name.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Profile describes one named connection in a profiles file.
type Profile struct {
	Dialect      string         `yaml:"dialect"`
	DSN          string         `yaml:"dsn"`
	Identifiers  string         `yaml:"identifiers"` // kebab (default), snake, camel
	QueryOptions map[string]any `yaml:"query_options"`
	MaxOpenConns int            `yaml:"max_open_conns"`
	MaxIdleConns int            `yaml:"max_idle_conns"`
}

func (p Profile) validate(name string) error {
	switch p.Dialect {
	case access.Postgres, access.MySQL, access.SQLite:
	default:
		return fmt.Errorf("profile: %s: unknown dialect %q", name, p.Dialect)
	}
	if p.DSN == "" {
		return fmt.Errorf("profile: %s: missing dsn", name)
	}
	if _, err := p.transform(); err != nil {
		return fmt.Errorf("profile: %s: %w", name, err)
	}
	return nil
}

func (p Profile) transform() (func(string) string, error) {
	switch p.Identifiers {
	case "", "kebab":
		return sqlbridge.KebabIdentifiers, nil
	case "snake":
		return sqlbridge.SnakeIdentifiers, nil
	case "camel":
		return sqlbridge.CamelIdentifiers, nil
	default:
		return nil, fmt.Errorf("unknown identifiers style %q", p.Identifiers)
	}
}

// Load reads and validates a profiles file.
func Load(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profiles map[string]Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("profile: parsing %s: %w", path, err)
	}
	for name, p := range profiles {
		if err := p.validate(name); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// Open loads the named profile from path and opens both the access-layer
// handle and the bridge connection context around it. The caller owns the
// returned DB and must close it when done.
func Open(path, name string) (*sqlbridge.Conn, *sqlaccess.DB, error) {
	profiles, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	p, ok := profiles[name]
	if !ok {
		return nil, nil, fmt.Errorf("profile: %q not found in %s", name, path)
	}
	db, err := sqlaccess.Open(p.Dialect, p.DSN)
	if err != nil {
		return nil, nil, err
	}
	if p.MaxOpenConns > 0 {
		db.DB().SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		db.DB().SetMaxIdleConns(p.MaxIdleConns)
	}
	ident, err := p.transform()
	if err != nil {
		return nil, nil, err
	}
	opts := []sqlbridge.Option{sqlbridge.WithIdentifiers(ident)}
	if len(p.QueryOptions) > 0 {
		opts = append(opts, sqlbridge.WithQueryOptions(access.QueryOptions(p.QueryOptions)))
	}
	return sqlbridge.Open(db, opts...), db, nil
}
