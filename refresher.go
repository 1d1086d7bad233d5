package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Refresher reconciles the legacy table inventory against the new metadata
// store. A bulk property scan discovers candidate matches cheaply (one
// scan covers every table); each candidate is then confirmed with a live
// probe against the legacy store before a destination is recorded.
type Refresher struct {
	legacy    LegacyStore
	metastore MetastoreClient
	cache     *statusCache
	cfg       CrawlerConfig
}

func NewRefresher(legacy LegacyStore, metastore MetastoreClient, cache *statusCache, cfg CrawlerConfig) *Refresher {
	return &Refresher{
		legacy:    legacy,
		metastore: metastore,
		cache:     cache,
		cfg:       cfg,
	}
}

// Snapshot returns the cached migration status records, crawling first
// when the cache is empty or forceRefresh is set.
func (r *Refresher) Snapshot(ctx context.Context, forceRefresh bool) ([]MigrationStatus, error) {
	return r.cache.Snapshot(ctx, forceRefresh, r.Refresh)
}

// Index builds the point-lookup index over the snapshot.
func (r *Refresher) Index(ctx context.Context, forceRefresh bool) (*MigrationIndex, error) {
	statuses, err := r.Snapshot(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return NewMigrationIndex(statuses), nil
}

// Refresh produces one MigrationStatus per table in the legacy inventory.
// Only an inventory failure aborts the pass; scan and probe failures
// degrade to "not migrated" for the affected tables.
func (r *Refresher) Refresh(ctx context.Context) ([]MigrationStatus, error) {
	inventory, err := r.legacy.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("legacy inventory snapshot: %w", err)
	}

	seen := r.SeenTables(ctx)
	reverseSeen := make(map[string]string, len(seen))
	for dst, src := range seen {
		reverseSeen[src] = dst
	}

	// One timestamp per pass, threaded into every record.
	updateTS := strconv.FormatInt(time.Now().UTC().Unix(), 10)

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	statuses := make([]MigrationStatus, len(inventory))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, table := range inventory {
		i, table := i, table
		g.Go(func() error {
			statuses[i] = r.tableStatus(gctx, table, reverseSeen, updateTS)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *Refresher) tableStatus(ctx context.Context, table LegacyTable, reverseSeen map[string]string, updateTS string) MigrationStatus {
	status := MigrationStatus{
		SrcSchema: strings.ToLower(table.Database),
		SrcTable:  strings.ToLower(table.Name),
		UpdateTS:  updateTS,
	}
	dstKey, ok := reverseSeen[table.Key()]
	if !ok {
		return status
	}
	migrated, err := r.LiveMigrationCheck(ctx, status.SrcSchema, status.SrcTable)
	if err != nil {
		log.Printf("WARN: migration probe for %s.%s: %v", status.SrcSchema, status.SrcTable, err)
		return status
	}
	if !migrated {
		return status
	}
	dst, ok := parseDestination(dstKey)
	if !ok {
		log.Printf("WARN: malformed destination identity %q for %s.%s, leaving unmigrated", dstKey, status.SrcSchema, status.SrcTable)
		return status
	}
	status.Dst = dst
	return status
}

// SeenTables scans the metadata store for objects carrying the
// upgraded-from property and maps destination identity to legacy identity,
// both lower-cased. Vanished or erroring catalogs and schemas are logged
// and skipped; the scan always completes. Duplicate destination keys are
// last-write-wins.
func (r *Refresher) SeenTables(ctx context.Context) map[string]string {
	seen := make(map[string]string)
	for _, schema := range r.iterSchemas(ctx) {
		tables, err := r.metastore.ListTables(ctx, schema.Catalog, schema.Name)
		if errors.Is(err, errNotFound) {
			log.Printf("WARN: schema %s.%s no longer exists, skipping its migration status", schema.Catalog, schema.Name)
			continue
		}
		if err != nil {
			log.Printf("WARN: listing tables in %s.%s: %v", schema.Catalog, schema.Name, err)
			continue
		}
		for _, table := range tables {
			src, ok := table.Properties[r.cfg.UpgradedFromProperty]
			if !ok {
				continue
			}
			if table.FullName() == "" {
				log.Printf("WARN: table %q in %s.%s has no full name, cannot index", table.Name, schema.Catalog, schema.Name)
				continue
			}
			view := TableView{Catalog: table.Catalog, Schema: table.Schema, Name: table.Name}
			seen[view.Key()] = strings.ToLower(src)
		}
	}
	return seen
}

func (r *Refresher) iterSchemas(ctx context.Context) []SchemaInfo {
	catalogs, err := r.metastore.ListCatalogs(ctx)
	if err != nil {
		log.Printf("WARN: cannot list catalogs: %v", err)
		return nil
	}
	var schemas []SchemaInfo
	for _, catalog := range catalogs {
		if r.skipCatalog(catalog) {
			continue
		}
		list, err := r.metastore.ListSchemas(ctx, catalog.Name)
		if errors.Is(err, errNotFound) {
			log.Printf("WARN: catalog %s no longer exists, skipping its migration status", catalog.Name)
			continue
		}
		if err != nil {
			log.Printf("WARN: listing schemas in catalog %s: %v", catalog.Name, err)
			continue
		}
		schemas = append(schemas, list...)
	}
	return schemas
}

func (r *Refresher) skipCatalog(c CatalogInfo) bool {
	for _, t := range r.cfg.SkipCatalogTypes {
		if strings.EqualFold(c.Type, t) {
			return true
		}
	}
	return false
}

// LiveMigrationCheck probes the legacy store for the upgraded-to marker,
// bypassing the snapshot cache. A source table that no longer exists
// counts as migrated: it cannot be migrated again, and reporting it
// pending forever would wedge dependent views.
func (r *Refresher) LiveMigrationCheck(ctx context.Context, schema, table string) (bool, error) {
	_, err := r.legacy.TableProperty(ctx, schema, table, r.cfg.UpgradedToProperty)
	switch {
	case errors.Is(err, errNotFound):
		log.Printf("WARN: source-missing: %s.%s no longer exists, treating as migrated", schema, table)
		return true, nil
	case errors.Is(err, errPropertyNotSet):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
