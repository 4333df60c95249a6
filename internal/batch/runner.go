package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fuelcycle/cyclana/internal/config"
	"github.com/fuelcycle/cyclana/internal/simdb"
	"github.com/fuelcycle/cyclana/internal/table"
	"github.com/fuelcycle/cyclana/internal/telemetry"
)

// Runner analyzes an ensemble of output databases and produces the merged
// run table. Each run yields one row; extraction fans out over a fixed
// worker pool and the first failure cancels the batch.
type Runner struct {
	cfg    config.Config
	logger *slog.Logger

	tracer        trace.Tracer
	filesAnalyzed metric.Int64Counter
	extractDur    metric.Float64Histogram
	cacheHits     metric.Int64Counter
	batchRows     metric.Int64Gauge
}

// NewRunner creates a Runner for the given configuration.
func NewRunner(cfg config.Config, logger *slog.Logger) *Runner {
	meter := telemetry.Meter("cyclana/batch")
	files, _ := meter.Int64Counter("cyclana.batch.files_analyzed",
		metric.WithDescription("Output databases analyzed"),
	)
	dur, _ := meter.Float64Histogram("cyclana.batch.extract.duration",
		metric.WithDescription("Time to extract the aggregated row of one database (ms)"),
		metric.WithUnit("ms"),
	)
	hits, _ := meter.Int64Counter("cyclana.batch.cache_hits",
		metric.WithDescription("Merged tables served from the cache container"),
	)
	rows, _ := meter.Int64Gauge("cyclana.batch.rows",
		metric.WithDescription("Rows in the merged run table"),
	)
	return &Runner{
		cfg:           cfg,
		logger:        logger,
		tracer:        telemetry.Tracer("cyclana/batch"),
		filesAnalyzed: files,
		extractDur:    dur,
		cacheHits:     hits,
		batchRows:     rows,
	}
}

// Run returns the merged run table for the configured data path, together
// with the batch id it was produced under. An existing cache container is
// served as-is regardless of the directory contents; force refresh rebuilds
// it. A fresh result is written back to the cache before returning.
func (r *Runner) Run(ctx context.Context) (*table.Table, uuid.UUID, error) {
	ctx, span := r.tracer.Start(ctx, "batch.run",
		trace.WithAttributes(
			attribute.String("cyclana.data_path", r.cfg.DataPath),
			attribute.Int("cyclana.workers", r.cfg.Workers),
		),
	)
	defer span.End()

	if r.cfg.CachePath != "" && !r.cfg.ForceRefresh {
		if _, err := os.Stat(r.cfg.CachePath); err == nil {
			tbl, batchID, err := table.Read(r.cfg.CachePath, r.cfg.TableKey)
			if err != nil {
				return nil, uuid.Nil, fmt.Errorf("batch: load cache: %w", err)
			}
			r.cacheHits.Add(ctx, 1)
			r.logger.Info("serving merged table from cache",
				"path", r.cfg.CachePath,
				"rows", tbl.NumRows(),
				"batch_id", batchID.String(),
			)
			return tbl, batchID, nil
		}
	}

	files, err := Discover(r.cfg.DataPath, r.cfg.JobFilter, r.cfg.MaxFiles)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if len(files) == 0 {
		return nil, uuid.Nil, fmt.Errorf("batch: no %s files under %s (filter %q)",
			OutputSuffix, r.cfg.DataPath, r.cfg.JobFilter)
	}

	batchID := uuid.New()
	parts := Partition(files, r.cfg.Workers)
	r.logger.Info("analyzing ensemble",
		"batch_id", batchID.String(),
		"files", len(files),
		"workers", len(parts),
		"root", r.cfg.DataPath,
	)

	// Worker i owns parts[i] and results[i]; merging in index order keeps
	// row order identical to the discovered file order.
	results := make([]*table.Table, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		g.Go(func() error {
			b := table.NewBuilder()
			for _, path := range part {
				row, err := r.analyzeFile(gctx, path)
				if err != nil {
					return fmt.Errorf("batch: analyze %s: %w", path, err)
				}
				b.Append(row)
			}
			results[i] = b.Table()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, uuid.Nil, err
	}

	merged := table.Merge(results)
	merged, err = merged.WithColumnOrder(columnOrder(merged.Columns()))
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("batch: order merged columns: %w", err)
	}
	r.batchRows.Record(ctx, int64(merged.NumRows()))

	if r.cfg.CachePath != "" {
		if err := table.Write(r.cfg.CachePath, r.cfg.TableKey, batchID, merged); err != nil {
			return nil, uuid.Nil, err
		}
		r.logger.Info("stored merged table",
			"path", r.cfg.CachePath,
			"rows", merged.NumRows(),
			"batch_id", batchID.String(),
		)
	}
	return merged, batchID, nil
}

// analyzeFile opens one output database and extracts its aggregated row.
// A Close failure surfaces as the row error so leaked handles are not
// silently ignored.
func (r *Runner) analyzeFile(ctx context.Context, path string) (row []table.Cell, err error) {
	ctx, span := r.tracer.Start(ctx, "batch.analyze_file",
		trace.WithAttributes(attribute.String("cyclana.db_path", path)),
	)
	defer span.End()

	start := time.Now()
	an, err := simdb.Open(ctx, path)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if cerr := an.Close(); cerr != nil && err == nil {
			row, err = nil, cerr
		}
	}()

	row, err = ExtractRow(ctx, an, r.cfg.Facilities)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	r.filesAnalyzed.Add(ctx, 1)
	r.extractDur.Record(ctx, float64(elapsed.Milliseconds()))
	r.logger.Debug("analyzed output database",
		"path", path,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return row, nil
}
