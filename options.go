package cyclana

import (
	"log/slog"
)

// Option configures a Run.
type Option func(*resolvedOptions)

// resolvedOptions holds all overrides after applying defaults.
// Unexported; callers use the With* functions.
type resolvedOptions struct {
	dataPath     string
	jobFilter    string
	maxFiles     int
	workers      int
	forceRefresh bool
	cachePath    string
	tableKey     string
	csvPath      string
	facilities   *Facilities
	logger       *slog.Logger
	version      string
}

// WithDataPath overrides the directory scanned for output databases
// (CYCLANA_DATA_PATH env var).
func WithDataPath(path string) Option {
	return func(o *resolvedOptions) { o.dataPath = path }
}

// WithJobFilter overrides the substring a file name must contain to be
// analyzed (CYCLANA_JOB_FILTER env var).
func WithJobFilter(filter string) Option {
	return func(o *resolvedOptions) { o.jobFilter = filter }
}

// WithMaxFiles overrides the cap on discovered files (CYCLANA_MAX_FILES
// env var). Zero leaves the configured value in place.
func WithMaxFiles(n int) Option {
	return func(o *resolvedOptions) { o.maxFiles = n }
}

// WithWorkers overrides the worker pool size (CYCLANA_WORKERS env var).
func WithWorkers(n int) Option {
	return func(o *resolvedOptions) { o.workers = n }
}

// WithForceRefresh discards any existing cache container and re-analyzes
// the ensemble (CYCLANA_FORCE_REFRESH env var).
func WithForceRefresh() Option {
	return func(o *resolvedOptions) { o.forceRefresh = true }
}

// WithCachePath overrides the cache container path (CYCLANA_CACHE_PATH
// env var).
func WithCachePath(path string) Option {
	return func(o *resolvedOptions) { o.cachePath = path }
}

// WithTableKey overrides the table key inside the cache container
// (CYCLANA_TABLE_KEY env var).
func WithTableKey(key string) Option {
	return func(o *resolvedOptions) { o.tableKey = key }
}

// WithCSVPath overrides the CSV export path (CYCLANA_CSV_PATH env var).
func WithCSVPath(path string) Option {
	return func(o *resolvedOptions) { o.csvPath = path }
}

// WithFacilities replaces the facility model built from defaults and the
// CYCLANA_FACILITIES YAML file. The model is validated before the run.
func WithFacilities(f Facilities) Option {
	return func(o *resolvedOptions) { o.facilities = &f }
}

// WithLogger sets the structured logger for the run.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in telemetry and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}
