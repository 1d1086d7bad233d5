package main

import "strings"

type tableKey struct {
	schema string
	table  string
}

// MigrationIndex is an immutable point-lookup structure over one refresh
// snapshot. It performs no I/O and is safe for unlimited concurrent reads;
// rebuilding from a newer snapshot is the only way to observe new state.
type MigrationIndex struct {
	byKey map[tableKey]MigrationStatus
}

// NewMigrationIndex builds an index keyed by lower-cased (schema, table).
func NewMigrationIndex(statuses []MigrationStatus) *MigrationIndex {
	byKey := make(map[tableKey]MigrationStatus, len(statuses))
	for _, s := range statuses {
		byKey[tableKey{strings.ToLower(s.SrcSchema), strings.ToLower(s.SrcTable)}] = s
	}
	return &MigrationIndex{byKey: byKey}
}

// IsMigrated reports whether the table has a recorded destination. A table
// known to the index but without a destination is not migrated.
func (ix *MigrationIndex) IsMigrated(schema, table string) bool {
	_, ok := ix.Get(schema, table)
	return ok
}

// Get returns the migration status for a table. Unknown tables and tables
// without a recorded destination both return ok=false: neither has a
// usable destination.
func (ix *MigrationIndex) Get(schema, table string) (MigrationStatus, bool) {
	s, ok := ix.byKey[tableKey{strings.ToLower(schema), strings.ToLower(table)}]
	if !ok || s.Dst == nil {
		return MigrationStatus{}, false
	}
	return s, true
}

// Len returns the number of records in the index, migrated or not.
func (ix *MigrationIndex) Len() int {
	return len(ix.byKey)
}
