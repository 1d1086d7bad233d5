package main

import (
	"context"
	"errors"
)

// errNotFound reports that a remote catalog, schema, or table disappeared
// between enumeration and inspection.
var errNotFound = errors.New("object not found")

// CatalogInfo, SchemaInfo, and TableInfo are the narrow descriptor shapes
// the crawler needs. Metastore implementations reduce their native records
// to these at the boundary.
type CatalogInfo struct {
	Name string
	Type string // e.g. "managed", "system"
}

type SchemaInfo struct {
	Catalog string
	Name    string
}

type TableInfo struct {
	Catalog    string
	Schema     string
	Name       string
	Properties map[string]string
}

// FullName returns the dotted three-part identity, or "" when any
// component is missing and the table cannot be indexed safely.
func (t TableInfo) FullName() string {
	if t.Catalog == "" || t.Schema == "" || t.Name == "" {
		return ""
	}
	return t.Catalog + "." + t.Schema + "." + t.Name
}

// MetastoreClient lists the object hierarchy of the new metadata store.
// Each call may fail with errNotFound (the object vanished mid-scan) or a
// generic remote error; callers decide how much of the scan to abandon.
type MetastoreClient interface {
	ListCatalogs(ctx context.Context) ([]CatalogInfo, error)
	ListSchemas(ctx context.Context, catalog string) ([]SchemaInfo, error)
	ListTables(ctx context.Context, catalog, schema string) ([]TableInfo, error)
}
