package main

import "testing"

func TestDestinationKey(t *testing.T) {
	d := Destination{Catalog: "Main", Schema: "Sales", Table: "Orders"}
	if got := d.Key(); got != "main.sales.orders" {
		t.Errorf("Key() = %q, want %q", got, "main.sales.orders")
	}
}

func TestParseDestination(t *testing.T) {
	tests := []struct {
		in   string
		want *Destination
		ok   bool
	}{
		{"main.sales.orders", &Destination{"main", "sales", "orders"}, true},
		{"sales.orders", nil, false},
		{"a.b.c.d", nil, false},
		{"main..orders", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := parseDestination(tt.in)
		if ok != tt.ok {
			t.Errorf("parseDestination(%q) ok = %t, want %t", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if *got != *tt.want {
			t.Errorf("parseDestination(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMigrationStatusKey(t *testing.T) {
	s := MigrationStatus{SrcSchema: "sales", SrcTable: "orders"}
	if got := s.Key(); got != "sales.orders" {
		t.Errorf("Key() = %q, want %q", got, "sales.orders")
	}
	if s.Migrated() {
		t.Error("Migrated() = true for record without destination")
	}
	s.Dst = &Destination{Catalog: "main", Schema: "sales", Table: "orders"}
	if !s.Migrated() {
		t.Error("Migrated() = false for record with destination")
	}
}

func TestTableViewKey(t *testing.T) {
	v := TableView{Catalog: "Main", Schema: "Sales", Name: "Orders"}
	if got := v.Key(); got != "main.sales.orders" {
		t.Errorf("Key() = %q, want %q", got, "main.sales.orders")
	}
}
