package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *statusCache {
	t.Helper()
	c, err := openStatusCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("openStatusCache() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheSnapshotRefreshesWhenEmpty(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	calls := 0
	refresh := func(context.Context) ([]MigrationStatus, error) {
		calls++
		return testStatuses(), nil
	}

	got, err := c.Snapshot(ctx, false, refresh)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("refresh called %d times, want 1", calls)
	}
	if len(got) != 2 {
		t.Fatalf("Snapshot() returned %d records, want 2", len(got))
	}

	// Second call is served from the cache.
	got, err = c.Snapshot(ctx, false, refresh)
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("refresh called %d times after cached read, want 1", calls)
	}
	ix := NewMigrationIndex(got)
	if !ix.IsMigrated("sales", "orders") {
		t.Error("cached record lost its destination")
	}
	if ix.IsMigrated("sales", "customers") {
		t.Error("cached unmigrated record gained a destination")
	}
	s, _ := ix.Get("sales", "orders")
	if s.UpdateTS != "1700000000" {
		t.Errorf("cached UpdateTS = %q", s.UpdateTS)
	}
}

func TestCacheForceRefreshReplaces(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	if _, err := c.Snapshot(ctx, false, func(context.Context) ([]MigrationStatus, error) {
		return testStatuses(), nil
	}); err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}

	// Force refresh with a smaller result set: replace, not append.
	replacement := []MigrationStatus{{SrcSchema: "hr", SrcTable: "people", UpdateTS: "1700000500"}}
	got, err := c.Snapshot(ctx, true, func(context.Context) ([]MigrationStatus, error) {
		return replacement, nil
	})
	if err != nil {
		t.Fatalf("Snapshot(force) error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Snapshot(force) returned %d records, want 1", len(got))
	}

	cached, err := c.load(ctx)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if len(cached) != 1 || cached[0].Key() != "hr.people" {
		t.Errorf("cache after force refresh = %+v, want only hr.people", cached)
	}
	if cached[0].Dst != nil {
		t.Errorf("unmigrated record round-tripped with destination %+v", cached[0].Dst)
	}
}

func TestCacheSnapshotRefreshError(t *testing.T) {
	c := openTestCache(t)

	wantErr := errors.New("inventory unavailable")
	_, err := c.Snapshot(context.Background(), true, func(context.Context) ([]MigrationStatus, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Snapshot() error = %v, want %v", err, wantErr)
	}
}

func TestCacheDestinationRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	in := []MigrationStatus{{
		SrcSchema: "sales",
		SrcTable:  "orders",
		Dst:       &Destination{Catalog: "main", Schema: "sales", Table: "orders"},
		UpdateTS:  "1700000000",
	}}
	if err := c.replace(ctx, in); err != nil {
		t.Fatalf("replace() error: %v", err)
	}
	out, err := c.load(ctx)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if len(out) != 1 || out[0].Dst == nil || *out[0].Dst != *in[0].Dst {
		t.Errorf("round-trip = %+v, want %+v", out, in)
	}
}
