package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// statusCache persists the most recent refresh snapshot so repeated index
// builds do not re-crawl both stores. A refresh replaces the stored
// snapshot wholesale; rows are never appended across passes.
type statusCache struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS migration_status (
	src_schema  TEXT NOT NULL,
	src_table   TEXT NOT NULL,
	dst_catalog TEXT,
	dst_schema  TEXT,
	dst_table   TEXT,
	update_ts   TEXT NOT NULL,
	PRIMARY KEY (src_schema, src_table)
)`

func openStatusCache(path string) (*statusCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &statusCache{db: db}, nil
}

func (c *statusCache) Close() error { return c.db.Close() }

// Snapshot returns the cached records, refreshing first when the cache is
// empty or force is set.
func (c *statusCache) Snapshot(ctx context.Context, force bool, refresh func(context.Context) ([]MigrationStatus, error)) ([]MigrationStatus, error) {
	if !force {
		cached, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		if len(cached) > 0 {
			return cached, nil
		}
	}
	fresh, err := refresh(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.replace(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (c *statusCache) load(ctx context.Context) ([]MigrationStatus, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT src_schema, src_table, dst_catalog, dst_schema, dst_table, update_ts
		 FROM migration_status
		 ORDER BY src_schema, src_table`)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	defer rows.Close()

	var statuses []MigrationStatus
	for rows.Next() {
		var s MigrationStatus
		var dstCatalog, dstSchema, dstTable sql.NullString
		if err := rows.Scan(&s.SrcSchema, &s.SrcTable, &dstCatalog, &dstSchema, &dstTable, &s.UpdateTS); err != nil {
			return nil, err
		}
		if dstCatalog.Valid && dstSchema.Valid && dstTable.Valid {
			s.Dst = &Destination{
				Catalog: dstCatalog.String,
				Schema:  dstSchema.String,
				Table:   dstTable.String,
			}
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (c *statusCache) replace(ctx context.Context, statuses []MigrationStatus) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM migration_status`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO migration_status
		 (src_schema, src_table, dst_catalog, dst_schema, dst_table, update_ts)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range statuses {
		var dstCatalog, dstSchema, dstTable any
		if s.Dst != nil {
			dstCatalog, dstSchema, dstTable = s.Dst.Catalog, s.Dst.Schema, s.Dst.Table
		}
		if _, err := stmt.ExecContext(ctx, s.SrcSchema, s.SrcTable, dstCatalog, dstSchema, dstTable, s.UpdateTS); err != nil {
			return fmt.Errorf("insert cache row for %s: %w", s.Key(), err)
		}
	}
	return tx.Commit()
}
