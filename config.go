package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the full TOML-driven crawler configuration.
type Config struct {
	Legacy    LegacyConfig    `toml:"legacy"`
	Metastore MetastoreConfig `toml:"metastore"`
	Cache     CacheConfig     `toml:"cache"`
	Crawler   CrawlerConfig   `toml:"crawler"`

	// configDir is the directory containing the TOML file, used to resolve
	// the relative cache path.
	configDir string
}

// LegacyConfig identifies the legacy catalog engine and connection string.
type LegacyConfig struct {
	Type string `toml:"type"` // "mysql" or "sqlite"
	DSN  string `toml:"dsn"`
}

type MetastoreConfig struct {
	DSN string `toml:"dsn"`
}

type CacheConfig struct {
	Path string `toml:"path"`
}

// CrawlerConfig controls the refresh pass.
type CrawlerConfig struct {
	Workers              int      `toml:"workers"`            // live-probe fan-out; 1 = sequential
	SkipCatalogTypes     []string `toml:"skip_catalog_types"` // catalog types excluded from the property scan
	UpgradedFromProperty string   `toml:"upgraded_from_property"`
	UpgradedToProperty   string   `toml:"upgraded_to_property"`
}

// loadConfig reads a TOML config file and returns a Config with defaults applied.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		Crawler: CrawlerConfig{
			SkipCatalogTypes:     []string{"system"},
			UpgradedFromProperty: "upgraded_from",
			UpgradedToProperty:   "upgraded_to",
		},
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	if cfg.Legacy.Type == "" {
		return nil, fmt.Errorf("legacy.type is required (must be mysql or sqlite)")
	}
	switch cfg.Legacy.Type {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("legacy.type must be one of: mysql, sqlite")
	}
	if cfg.Legacy.DSN == "" {
		return nil, fmt.Errorf("legacy.dsn is required")
	}
	if cfg.Metastore.DSN == "" {
		return nil, fmt.Errorf("metastore.dsn is required")
	}

	cfg.Cache.Path = strings.TrimSpace(cfg.Cache.Path)
	if cfg.Cache.Path == "" {
		return nil, fmt.Errorf("cache.path is required")
	}

	if cfg.Crawler.Workers <= 0 {
		cfg.Crawler.Workers = defaultWorkers()
	}
	cfg.Crawler.UpgradedFromProperty = strings.TrimSpace(cfg.Crawler.UpgradedFromProperty)
	cfg.Crawler.UpgradedToProperty = strings.TrimSpace(cfg.Crawler.UpgradedToProperty)
	if cfg.Crawler.UpgradedFromProperty == "" {
		return nil, fmt.Errorf("crawler.upgraded_from_property must not be blank")
	}
	if cfg.Crawler.UpgradedToProperty == "" {
		return nil, fmt.Errorf("crawler.upgraded_to_property must not be blank")
	}
	for _, t := range cfg.Crawler.SkipCatalogTypes {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("crawler.skip_catalog_types must not contain blank entries")
		}
	}

	return &cfg, nil
}

// cachePath resolves the cache path relative to the config file directory.
func (c *Config) cachePath() string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	return filepath.Join(c.configDir, c.Cache.Path)
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
