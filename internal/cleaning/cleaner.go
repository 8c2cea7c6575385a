// Package cleaning implements the data-cleaning pipeline: column
// standardization, deduplication, missing-value imputation, IQR outlier
// removal, and type coercion, run in that fixed order against an in-memory
// table. The pipeline is non-destructive; callers get a new table plus the
// stats accumulated across the stages.
package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"datawash/pkg/contracts/domain"
)

// Result carries one cleaning run's output.
type Result struct {
	Table *domain.Table
	Stats domain.CleaningStats
}

// Metrics receives per-run figures. The infrastructure package provides the
// OTel-backed implementation; a nil recorder disables recording.
type Metrics interface {
	RecordCleaningRun(ctx context.Context, duration time.Duration, rowsIn, rowsOut int)
}

// Cleaner runs the pipeline. Safe for concurrent use: each run operates on
// its own clone of the input, and the Cleaner itself holds no run state.
type Cleaner struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics Metrics
}

// NewCleaner returns a Cleaner logging through logger. metrics may be nil.
func NewCleaner(logger *slog.Logger, metrics Metrics) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger:  logger.With(slog.String("component", "cleaner")),
		tracer:  otel.Tracer("datawash.cleaning"),
		metrics: metrics,
	}
}

// Clean validates the table and runs the stages in their fixed order:
// standardize, dedupe, impute, filter outliers, coerce types. Standardize,
// outlier filtering, and coercion are gated by their options; dedupe and
// imputation always run. The input table is never mutated. Each stats field
// is written once by the stage that produces it.
//
// Coercion only has types to act on when standardization ran: with
// StandardizeColumnNames false there is no inference pass, DataTypeSummary
// stays empty, and FixDataTypes becomes a no-op.
func (c *Cleaner) Clean(ctx context.Context, t *domain.Table, opts domain.Options) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "cleaning.Clean",
		trace.WithAttributes(
			attribute.Int("dataset.rows", t.RowCount()),
			attribute.Int("dataset.columns", t.ColumnCount()),
			attribute.String("options.strategy", opts.MissingValueStrategy),
		))
	defer span.End()
	start := time.Now()

	if err := validateInput(t); err != nil {
		return nil, err
	}

	stats := domain.CleaningStats{
		TotalRows:       len(t.Rows),
		TotalColumns:    len(t.Columns),
		ColumnsRenamed:  []domain.ColumnRename{},
		DataTypeSummary: map[string]int{},
	}

	work := t.Clone()
	var types map[string]string

	if opts.StandardizeColumnNames {
		work, types = standardize(work, &stats)
		c.logger.DebugContext(ctx, "columns standardized",
			slog.Int("columns", len(work.Columns)),
			slog.Any("type_summary", stats.DataTypeSummary))
	}

	work, stats.DuplicatesRemoved = dedupe(work)
	c.logger.DebugContext(ctx, "duplicates removed",
		slog.Int("removed", stats.DuplicatesRemoved))

	work, fixed, err := impute(work, opts.MissingValueStrategy, opts.ConstantValue)
	if err != nil {
		return nil, err
	}
	stats.NullValuesFixed = fixed
	c.logger.DebugContext(ctx, "missing values imputed",
		slog.String("strategy", opts.MissingValueStrategy),
		slog.Int("fixed", fixed))

	if opts.RemoveOutliers {
		work, stats.OutlierCount = filterOutliers(work)
		c.logger.DebugContext(ctx, "outliers filtered",
			slog.Int("removed", stats.OutlierCount))
	}

	if opts.FixDataTypes && len(types) > 0 {
		work = coerceTypes(work, types)
		c.logger.DebugContext(ctx, "types coerced",
			slog.Int("typed_columns", len(types)))
	}

	duration := time.Since(start)
	c.logger.InfoContext(ctx, "cleaning run completed",
		slog.Int("rows_in", stats.TotalRows),
		slog.Int("rows_out", len(work.Rows)),
		slog.Int("duplicates_removed", stats.DuplicatesRemoved),
		slog.Int("null_values_fixed", stats.NullValuesFixed),
		slog.Int("outliers_removed", stats.OutlierCount),
		slog.Duration("duration", duration))

	if c.metrics != nil {
		c.metrics.RecordCleaningRun(ctx, duration, stats.TotalRows, len(work.Rows))
	}

	return &Result{Table: work, Stats: stats}, nil
}

// validateInput rejects tables the pipeline cannot run against: nil or
// empty ones, and rows carrying columns the table does not declare.
func validateInput(t *domain.Table) error {
	if t == nil || len(t.Rows) == 0 {
		return fmt.Errorf("%w: dataset has no rows", ErrInvalidInput)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("%w: dataset has no columns", ErrInvalidInput)
	}

	declared := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		declared[col] = true
	}
	for i, row := range t.Rows {
		for key := range row {
			if !declared[key] {
				return fmt.Errorf("%w: row %d has undeclared column %q", ErrInvalidInput, i, key)
			}
		}
	}
	return nil
}
