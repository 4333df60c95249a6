// Package main is the entry point for the cyclana batch analyzer. It scans
// a directory tree of simulation output databases, aggregates one row per
// run, and prints a per-column summary of the merged table.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fuelcycle/cyclana/internal/batch"
	"github.com/fuelcycle/cyclana/internal/config"
	"github.com/fuelcycle/cyclana/internal/table"
	"github.com/fuelcycle/cyclana/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	// Environment variables establish the flag defaults, so flags override
	// env which overrides the built-in defaults.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cyclana:", err)
		return 2
	}

	dataPath := flag.String("data-path", cfg.DataPath, "root directory scanned for .sqlite output databases")
	jobFilter := flag.String("job-id", cfg.JobFilter, "substring a file name must contain to be analyzed")
	maxFiles := flag.Int("max-files", cfg.MaxFiles, "cap on analyzed files (0 = no cap)")
	workers := flag.Int("workers", cfg.Workers, "worker pool size")
	forceRefresh := flag.Bool("force-update", cfg.ForceRefresh, "ignore any existing cache container and re-analyze")
	cachePath := flag.String("cache", cfg.CachePath, "cache container path (empty disables caching)")
	csvPath := flag.String("csv", cfg.CSVPath, "CSV export path (empty disables export)")
	facPath := flag.String("facilities", cfg.FacilitiesPath, "facility model YAML path")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("cyclana", version)
		return 0
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	slog.SetDefault(logger)

	cfg.DataPath = *dataPath
	cfg.JobFilter = *jobFilter
	cfg.MaxFiles = *maxFiles
	cfg.Workers = *workers
	cfg.ForceRefresh = *forceRefresh
	cfg.CachePath = *cachePath
	cfg.CSVPath = *csvPath
	cfg.LogLevel = *logLevel
	if *facPath != cfg.FacilitiesPath {
		cfg.FacilitiesPath = *facPath
		cfg.Facilities = config.DefaultFacilities()
		if *facPath != "" {
			fac, err := config.LoadFacilities(*facPath)
			if err != nil {
				slog.Error("fatal error", "error", err)
				return 1
			}
			cfg.Facilities = fac
		}
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("cyclana starting",
		"version", version,
		"data_path", cfg.DataPath,
		"workers", cfg.Workers,
	)

	// Initialize OpenTelemetry. Flushing on shutdown matters for a batch
	// tool: the run is usually shorter than one export interval.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(sctx)
	}()

	tbl, batchID, err := batch.NewRunner(cfg, logger).Run(ctx)
	if err != nil {
		return err
	}

	if cfg.CSVPath != "" {
		if err := writeCSV(cfg.CSVPath, tbl); err != nil {
			return err
		}
		logger.Info("exported merged table", "path", cfg.CSVPath, "rows", tbl.NumRows())
	}

	printSummary(os.Stdout, tbl, batchID)
	return nil
}

// writeCSV exports the merged table to path.
func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	if err := t.WriteCSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv export %s: %w", path, err)
	}
	return nil
}

// printSummary writes per-column count, mean, min and max of the merged
// table. NaN cells (columns absent from some runs) are left out.
func printSummary(w io.Writer, t *table.Table, batchID uuid.UUID) {
	fmt.Fprintf(w, "batch %s: %d runs\n", batchID, t.NumRows())
	for _, col := range t.Columns() {
		vals, _ := t.Column(col)
		var sum float64
		lo, hi := math.Inf(1), math.Inf(-1)
		n := 0
		for _, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			n++
		}
		if n == 0 {
			fmt.Fprintf(w, "  %-28s no values\n", col)
			continue
		}
		fmt.Fprintf(w, "  %-28s n=%d mean=%.6g min=%.6g max=%.6g\n",
			col, n, sum/float64(n), lo, hi)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
