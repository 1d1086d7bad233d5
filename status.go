package main

import "strings"

// MigrationStatus records whether a single legacy table (or view) has been
// migrated to the new metadata store, and if so where. SrcSchema and
// SrcTable are lower-cased at creation and form the natural key. Dst is
// nil while the table has not been migrated.
type MigrationStatus struct {
	SrcSchema string
	SrcTable  string
	Dst       *Destination
	UpdateTS  string // seconds since epoch; shared by every record of one refresh pass
}

// Key returns the lower-cased "schema.table" source identity.
func (s MigrationStatus) Key() string {
	return lowerKey(s.SrcSchema, s.SrcTable)
}

// Migrated reports whether a destination has been recorded.
func (s MigrationStatus) Migrated() bool {
	return s.Dst != nil
}

// Destination identifies a migrated table in the new metadata store. A
// value exists only when catalog, schema, and table are all known, so a
// partially-known destination cannot be formatted by accident.
type Destination struct {
	Catalog string
	Schema  string
	Table   string
}

// Key returns the lower-cased dotted destination identity.
func (d Destination) Key() string {
	return lowerKey(d.Catalog, d.Schema, d.Table)
}

// parseDestination splits a dotted destination identity into its three
// components. Identities that do not split into exactly
// catalog.schema.table are rejected.
func parseDestination(identity string) (*Destination, bool) {
	parts := strings.Split(identity, ".")
	if len(parts) != 3 {
		return nil, false
	}
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	return &Destination{Catalog: parts[0], Schema: parts[1], Table: parts[2]}, true
}

// TableView identifies a table or view in the new metadata store. It is a
// lookup-only value used against the seen-table map, never persisted.
type TableView struct {
	Catalog string
	Schema  string
	Name    string
}

// Key returns the lower-cased dotted identity.
func (v TableView) Key() string {
	return lowerKey(v.Catalog, v.Schema, v.Name)
}
