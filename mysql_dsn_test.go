package main

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestMySQLDSNWithReadOptions(t *testing.T) {
	out, err := mysqlDSNWithReadOptions("root:root@tcp(127.0.0.1:3306)/metastore")
	if err != nil {
		t.Fatalf("mysqlDSNWithReadOptions() error: %v", err)
	}

	cfg, err := mysql.ParseDSN(out)
	if err != nil {
		t.Fatalf("ParseDSN(%q) error: %v", out, err)
	}
	if !cfg.ParseTime {
		t.Error("ParseTime not set")
	}
	if !cfg.InterpolateParams {
		t.Error("InterpolateParams not set")
	}
	if cfg.Loc != time.UTC {
		t.Errorf("Loc = %v, want UTC", cfg.Loc)
	}
	if cfg.DBName != "metastore" {
		t.Errorf("DBName = %q, want %q", cfg.DBName, "metastore")
	}
}

func TestMySQLDSNWithReadOptions_InvalidDSN(t *testing.T) {
	if _, err := mysqlDSNWithReadOptions("://bad-dsn"); err == nil {
		t.Fatal("expected error for invalid DSN")
	}
}

func TestMySQLDSNWithReadOptions_MissingDatabase(t *testing.T) {
	if _, err := mysqlDSNWithReadOptions("root:root@tcp(127.0.0.1:3306)/"); err == nil {
		t.Fatal("expected error for DSN without a database name")
	}
}
