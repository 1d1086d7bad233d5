package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var forceRefresh bool

var rootCmd = &cobra.Command{
	Use:   "migstat",
	Short: "Track which legacy catalog tables have been migrated to the new metadata store",
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <config.toml>",
	Short: "Crawl both stores and persist a fresh migration status snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefresh,
}

var statusCmd = &cobra.Command{
	Use:   "status <config.toml> <schema.table>",
	Short: "Report the recorded migration status of one table",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var checkCmd = &cobra.Command{
	Use:   "check <config.toml> <schema.table>",
	Short: "Probe the legacy store live, bypassing the snapshot cache",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheck,
}

func init() {
	statusCmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "re-crawl instead of using the cached snapshot")
	rootCmd.AddCommand(refreshCmd, statusCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRefresher wires the legacy store, metastore client, and snapshot
// cache from a config file. The returned cleanup closes all three.
func openRefresher(ctx context.Context, cfgPath string) (*Refresher, func(), error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	legacy, err := openLegacyStore(cfg.Legacy)
	if err != nil {
		return nil, nil, err
	}

	metastore, err := openPGMetastore(ctx, cfg.Metastore.DSN)
	if err != nil {
		legacy.Close()
		return nil, nil, err
	}

	cache, err := openStatusCache(cfg.cachePath())
	if err != nil {
		metastore.Close()
		legacy.Close()
		return nil, nil, err
	}

	log.Printf("config: legacy=%s workers=%d skip_catalog_types=%s",
		legacy.Name(), cfg.Crawler.Workers, strings.Join(cfg.Crawler.SkipCatalogTypes, ","))

	cleanup := func() {
		cache.Close()
		metastore.Close()
		legacy.Close()
	}
	return NewRefresher(legacy, metastore, cache, cfg.Crawler), cleanup, nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	r, cleanup, err := openRefresher(ctx, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	log.Printf("refreshing migration status...")
	statuses, err := r.Snapshot(ctx, true)
	if err != nil {
		return err
	}

	migrated := 0
	for _, s := range statuses {
		if s.Migrated() {
			migrated++
		}
	}
	log.Printf("refresh completed in %s: %d tables, %d migrated",
		time.Since(start).Round(time.Millisecond), len(statuses), migrated)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	schema, table, err := splitQualifiedTable(args[1])
	if err != nil {
		return err
	}

	r, cleanup, err := openRefresher(ctx, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	index, err := r.Index(ctx, forceRefresh)
	if err != nil {
		return err
	}

	if s, ok := index.Get(schema, table); ok {
		fmt.Printf("%s -> %s\n", s.Key(), s.Dst.Key())
		return nil
	}
	fmt.Printf("%s: not migrated\n", lowerKey(schema, table))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	schema, table, err := splitQualifiedTable(args[1])
	if err != nil {
		return err
	}

	r, cleanup, err := openRefresher(ctx, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	migrated, err := r.LiveMigrationCheck(ctx, schema, table)
	if err != nil {
		return err
	}
	if migrated {
		fmt.Printf("%s: migrated\n", lowerKey(schema, table))
	} else {
		fmt.Printf("%s: not migrated\n", lowerKey(schema, table))
	}
	return nil
}
