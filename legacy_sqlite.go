package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// sqliteLegacyStore reads an exported metastore dump carrying the same
// DBS/TBLS/TABLE_PARAMS shape as the live backing database. Useful for
// dry runs against a snapshot instead of the production metastore.
type sqliteLegacyStore struct {
	db *sql.DB
}

func openSQLiteLegacyStore(dsn string) (*sqliteLegacyStore, error) {
	uri, err := sqliteReadOnlyURI(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &sqliteLegacyStore{db: db}, nil
}

// sqliteReadOnlyURI forces read-only mode on a SQLite DSN. The legacy dump
// is never written.
func sqliteReadOnlyURI(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("sqlite dsn is empty")
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&mode=ro", nil
	}
	return dsn + "?mode=ro", nil
}

func (s *sqliteLegacyStore) Name() string { return "SQLite" }

func (s *sqliteLegacyStore) Close() error { return s.db.Close() }

func (s *sqliteLegacyStore) Snapshot(ctx context.Context) ([]LegacyTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.NAME, t.TBL_NAME
		 FROM TBLS t
		 JOIN DBS d ON d.DB_ID = t.DB_ID
		 ORDER BY d.NAME, t.TBL_NAME`)
	if err != nil {
		return nil, fmt.Errorf("list legacy tables: %w", err)
	}
	defer rows.Close()

	var tables []LegacyTable
	for rows.Next() {
		var t LegacyTable
		if err := rows.Scan(&t.Database, &t.Name); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (s *sqliteLegacyStore) TableProperty(ctx context.Context, schema, table, property string) (string, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM TBLS t
		   JOIN DBS d ON d.DB_ID = t.DB_ID
		   WHERE d.NAME = ? AND t.TBL_NAME = ?)`,
		schema, table).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("check legacy table %s.%s: %w", schema, table, err)
	}
	if !exists {
		return "", errNotFound
	}

	var value string
	err = s.db.QueryRowContext(ctx,
		`SELECT p.PARAM_VALUE
		 FROM TABLE_PARAMS p
		 JOIN TBLS t ON t.TBL_ID = p.TBL_ID
		 JOIN DBS d ON d.DB_ID = t.DB_ID
		 WHERE d.NAME = ? AND t.TBL_NAME = ? AND p.PARAM_KEY = ?`,
		schema, table, property).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errPropertyNotSet
	}
	if err != nil {
		return "", fmt.Errorf("fetch property %s for %s.%s: %w", property, schema, table, err)
	}
	return value, nil
}
