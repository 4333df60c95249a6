// Package cyclana is the public API for embedding the fuel-cycle ensemble
// analyzer.
//
// Consumers import this package to run whole-ensemble analyses without
// shelling out to the CLI:
//
//	res, err := cyclana.Run(ctx,
//	    cyclana.WithDataPath("/data/scenario7"),
//	    cyclana.WithWorkers(8),
//	    cyclana.WithLogger(logger),
//	)
//	if err != nil { ... }
//	heu, _ := res.Column("total_heu")
//
// The import graph enforces a strict no-cycle rule: cyclana (root) imports
// internal/*, but internal/* never imports cyclana (root). Public types
// (Result, Facilities) are standalone structs with no internal imports;
// conversion helpers (toPublicResult, toInternalFacilities) live here
// because this is the only file that sees both sides of the boundary.
package cyclana

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fuelcycle/cyclana/internal/batch"
	"github.com/fuelcycle/cyclana/internal/config"
	"github.com/fuelcycle/cyclana/internal/table"
	"github.com/fuelcycle/cyclana/internal/telemetry"
)

// Run analyzes every simulation output database under the configured data
// path and returns the merged run table. Configuration is read from
// environment variables (plus an optional .env file), then option
// overrides are applied on top.
func Run(ctx context.Context, opts ...Option) (*Result, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.dataPath != "" {
		cfg.DataPath = o.dataPath
	}
	if o.jobFilter != "" {
		cfg.JobFilter = o.jobFilter
	}
	if o.maxFiles != 0 {
		cfg.MaxFiles = o.maxFiles
	}
	if o.workers != 0 {
		cfg.Workers = o.workers
	}
	if o.forceRefresh {
		cfg.ForceRefresh = true
	}
	if o.cachePath != "" {
		cfg.CachePath = o.cachePath
	}
	if o.tableKey != "" {
		cfg.TableKey = o.tableKey
	}
	if o.csvPath != "" {
		cfg.CSVPath = o.csvPath
	}
	if o.facilities != nil {
		cfg.Facilities = toInternalFacilities(*o.facilities)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	// Initialize OpenTelemetry. The shutdown flush matters here: batch runs
	// are usually shorter than one export interval.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	tbl, batchID, err := batch.NewRunner(cfg, logger).Run(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.CSVPath != "" {
		if err := exportCSV(cfg.CSVPath, tbl); err != nil {
			return nil, err
		}
		logger.Info("exported merged table", "path", cfg.CSVPath, "rows", tbl.NumRows())
	}

	return toPublicResult(tbl, batchID), nil
}

// exportCSV writes the merged table to path as CSV.
func exportCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
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

// toPublicResult converts the internal table to the public Result. Column
// slices come from Table.Column, which copies, so the Result never aliases
// internal state.
func toPublicResult(t *table.Table, batchID uuid.UUID) *Result {
	cols := t.Columns()
	data := make(map[string][]float64, len(cols))
	for _, col := range cols {
		vals, _ := t.Column(col)
		data[col] = vals
	}
	return &Result{BatchID: batchID, Columns: cols, Data: data}
}

// toInternalFacilities converts the public facility model to the internal one.
func toInternalFacilities(f Facilities) config.Facilities {
	return config.Facilities{
		HEUSink:          f.HEUSink,
		PuSink:           f.PuSink,
		Enrichment:       f.Enrichment,
		NaturalUStorage:  f.NaturalUStorage,
		FreshFuelStorage: f.FreshFuelStorage,
		DepletedUSink:    f.DepletedUSink,
		WasteSink:        f.WasteSink,
		Reactors:         append([]string(nil), f.Reactors...),
	}
}
