package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgMetastore reads the new metadata store's catalog tables over pgx.
// The store keeps one row per catalog/schema/table with table properties
// in a JSONB column.
type pgMetastore struct {
	pool *pgxpool.Pool
}

func openPGMetastore(ctx context.Context, dsn string) (*pgMetastore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect metastore: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping metastore: %w", err)
	}
	return &pgMetastore{pool: pool}, nil
}

func (m *pgMetastore) Close() { m.pool.Close() }

func (m *pgMetastore) ListCatalogs(ctx context.Context) ([]CatalogInfo, error) {
	rows, err := m.pool.Query(ctx,
		`SELECT name, catalog_type FROM catalogs ORDER BY name`)
	if err != nil {
		return nil, mapPGErr(err)
	}
	defer rows.Close()

	var catalogs []CatalogInfo
	for rows.Next() {
		var c CatalogInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, rows.Err()
}

func (m *pgMetastore) ListSchemas(ctx context.Context, catalog string) ([]SchemaInfo, error) {
	if err := m.requireCatalog(ctx, catalog); err != nil {
		return nil, err
	}
	rows, err := m.pool.Query(ctx,
		`SELECT catalog_name, name FROM schemas WHERE catalog_name = $1 ORDER BY name`,
		catalog)
	if err != nil {
		return nil, mapPGErr(err)
	}
	defer rows.Close()

	var schemas []SchemaInfo
	for rows.Next() {
		var s SchemaInfo
		if err := rows.Scan(&s.Catalog, &s.Name); err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, rows.Err()
}

func (m *pgMetastore) ListTables(ctx context.Context, catalog, schema string) ([]TableInfo, error) {
	if err := m.requireSchema(ctx, catalog, schema); err != nil {
		return nil, err
	}
	rows, err := m.pool.Query(ctx,
		`SELECT catalog_name, schema_name, name, COALESCE(properties, '{}'::jsonb)
		 FROM tables
		 WHERE catalog_name = $1 AND schema_name = $2
		 ORDER BY name`,
		catalog, schema)
	if err != nil {
		return nil, mapPGErr(err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Catalog, &t.Schema, &t.Name, &t.Properties); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (m *pgMetastore) requireCatalog(ctx context.Context, catalog string) error {
	var exists bool
	err := m.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM catalogs WHERE name = $1)`, catalog).Scan(&exists)
	if err != nil {
		return mapPGErr(err)
	}
	if !exists {
		return errNotFound
	}
	return nil
}

func (m *pgMetastore) requireSchema(ctx context.Context, catalog, schema string) error {
	var exists bool
	err := m.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schemas WHERE catalog_name = $1 AND name = $2)`,
		catalog, schema).Scan(&exists)
	if err != nil {
		return mapPGErr(err)
	}
	if !exists {
		return errNotFound
	}
	return nil
}

// mapPGErr converts pgx not-found conditions to errNotFound. SQLSTATE
// 42P01 covers a catalog table dropped out from under the scan.
func mapPGErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return errNotFound
	}
	return err
}
