// Package config loads the daemon configuration from a TOML file.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the validated daemon configuration.
type Config struct {
	DBPath      string
	ListenAddr  string
	CatalogPath string
	AdminKey    string
	LogDebug    bool
	AutoUpdate  AutoUpdate
}

// AutoUpdate is the price fluctuation policy plus its cadence.
type AutoUpdate struct {
	Enabled        bool
	MaxFluctuation float64
	Interval       time.Duration
}

type tomlConfig struct {
	DBPath      string         `toml:"db_path"`
	ListenAddr  string         `toml:"listen_addr"`
	CatalogPath string         `toml:"catalog_path"`
	AdminKey    string         `toml:"admin_key"`
	LogDebug    bool           `toml:"log_debug"`
	AutoUpdate  tomlAutoUpdate `toml:"price-auto-update"`
}

type tomlAutoUpdate struct {
	Enabled        bool     `toml:"enabled"`
	MaxFluctuation *float64 `toml:"max-fluctuation"`
	Interval       string   `toml:"interval"`
}

// Load reads a TOML config file, applying defaults for unset fields.
func Load(path string) (*Config, error) {
	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config file with path: %s", path)
	}

	if tc.DBPath == "" {
		tc.DBPath = "data/bazaar.db"
	}
	if tc.ListenAddr == "" {
		tc.ListenAddr = "localhost:8080"
	}
	if tc.CatalogPath == "" {
		tc.CatalogPath = "catalog.toml"
	}

	maxFluctuation := 0.1
	if tc.AutoUpdate.MaxFluctuation != nil {
		maxFluctuation = *tc.AutoUpdate.MaxFluctuation
	}
	if maxFluctuation < 0 || maxFluctuation > 1 {
		return nil, errors.Errorf("price-auto-update.max-fluctuation out of range [0, 1]: %v", maxFluctuation)
	}

	interval := 5 * time.Minute
	if tc.AutoUpdate.Interval != "" {
		var err error
		interval, err = time.ParseDuration(tc.AutoUpdate.Interval)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse price-auto-update.interval: %s", tc.AutoUpdate.Interval)
		}
		if interval < 10*time.Second {
			return nil, errors.Errorf("price-auto-update.interval too short (%v), minimum interval: 10s", interval)
		}
	}

	return &Config{
		DBPath:      tc.DBPath,
		ListenAddr:  tc.ListenAddr,
		CatalogPath: tc.CatalogPath,
		AdminKey:    tc.AdminKey,
		LogDebug:    tc.LogDebug,
		AutoUpdate: AutoUpdate{
			Enabled:        tc.AutoUpdate.Enabled,
			MaxFluctuation: maxFluctuation,
			Interval:       interval,
		},
	}, nil
}
