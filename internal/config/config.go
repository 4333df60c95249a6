// Package config loads and validates application configuration from
// environment variables and the optional facility-model YAML file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// Input discovery.
	DataPath  string // Root directory scanned for output databases.
	JobFilter string // Substring a file name must contain; empty matches all.
	MaxFiles  int    // Cap on discovered files; 0 means no cap.

	// Batch settings.
	Workers      int
	ForceRefresh bool // Re-analyze even when a cache container exists.

	// Result handling.
	CachePath string // Binary cache container path. Empty = caching disabled.
	TableKey  string // Table key inside the cache container.
	CSVPath   string // CSV export path. Empty = no export.

	// Facility model.
	FacilitiesPath string // YAML override for facility prototype names.
	Facilities     Facilities

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool // Plain-HTTP OTLP export, for local collectors.
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible
// defaults, then applies the facility YAML when one is configured.
func Load() (Config, error) {
	cfg := Config{
		DataPath:       envStr("CYCLANA_DATA_PATH", "."),
		JobFilter:      envStr("CYCLANA_JOB_FILTER", ""),
		MaxFiles:       envInt("CYCLANA_MAX_FILES", 0),
		Workers:        envInt("CYCLANA_WORKERS", runtime.NumCPU()),
		ForceRefresh:   envBool("CYCLANA_FORCE_REFRESH", false),
		CachePath:      envStr("CYCLANA_CACHE_PATH", ""),
		TableKey:       envStr("CYCLANA_TABLE_KEY", "runs"),
		CSVPath:        envStr("CYCLANA_CSV_PATH", ""),
		FacilitiesPath: envStr("CYCLANA_FACILITIES", ""),
		OTELEndpoint:   envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:   envBool("CYCLANA_OTEL_INSECURE", false),
		ServiceName:    envStr("OTEL_SERVICE_NAME", "cyclana"),
		LogLevel:       envStr("CYCLANA_LOG_LEVEL", "info"),
	}

	cfg.Facilities = DefaultFacilities()
	if cfg.FacilitiesPath != "" {
		fac, err := LoadFacilities(cfg.FacilitiesPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Facilities = fac
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("config: CYCLANA_DATA_PATH is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: CYCLANA_WORKERS must be positive")
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("config: CYCLANA_MAX_FILES must not be negative")
	}
	if c.TableKey == "" {
		return fmt.Errorf("config: CYCLANA_TABLE_KEY is required")
	}
	return c.Facilities.Validate()
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
