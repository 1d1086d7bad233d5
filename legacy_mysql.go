package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// mysqlLegacyStore reads the legacy catalog straight from a Hive-style
// metastore backing database (DBS, TBLS, TABLE_PARAMS).
type mysqlLegacyStore struct {
	db *sql.DB
}

func openMySQLLegacyStore(dsn string) (*mysqlLegacyStore, error) {
	readDSN, err := mysqlDSNWithReadOptions(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", readDSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(2)
	return &mysqlLegacyStore{db: db}, nil
}

func (s *mysqlLegacyStore) Name() string { return "MySQL" }

func (s *mysqlLegacyStore) Close() error { return s.db.Close() }

func (s *mysqlLegacyStore) Snapshot(ctx context.Context) ([]LegacyTable, error) {
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

// TableProperty distinguishes "table gone" from "property absent" with two
// point queries: existence first, then the parameter row.
func (s *mysqlLegacyStore) TableProperty(ctx context.Context, schema, table, property string) (string, error) {
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
