package main

import (
	"context"
	"errors"
	"fmt"
)

// errPropertyNotSet reports that a table exists but does not carry the
// requested property.
var errPropertyNotSet = errors.New("property not set")

// LegacyTable is one entry of the legacy catalog's table inventory.
type LegacyTable struct {
	Database string // legacy schema name
	Name     string
}

// Key returns the lower-cased "schema.table" identity matched against the
// seen-table map.
func (t LegacyTable) Key() string {
	return lowerKey(t.Database, t.Name)
}

// LegacyStore abstracts the legacy metadata catalog so migstat can read
// both live metastores (MySQL backing database) and exported dumps
// (SQLite) through the same crawl path.
type LegacyStore interface {
	// Name returns a human-readable engine name ("MySQL", "SQLite").
	Name() string

	// Snapshot lists every table and view known to the legacy catalog.
	Snapshot(ctx context.Context) ([]LegacyTable, error)

	// TableProperty fetches a single named table property. It returns
	// errPropertyNotSet when the table exists without the property, and
	// errNotFound when the table itself is gone.
	TableProperty(ctx context.Context, schema, table, property string) (string, error)

	Close() error
}

// openLegacyStore returns a LegacyStore for the configured engine.
func openLegacyStore(cfg LegacyConfig) (LegacyStore, error) {
	switch cfg.Type {
	case "mysql":
		return openMySQLLegacyStore(cfg.DSN)
	case "sqlite":
		return openSQLiteLegacyStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported legacy store type %q (must be mysql or sqlite)", cfg.Type)
	}
}
