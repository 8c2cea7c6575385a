package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"datawash/internal/cleaning"
	"datawash/internal/exporter"
	"datawash/internal/reader"
	"datawash/internal/store"
	"datawash/pkg/contracts/domain"
)

// Preview windows are clamped to keep responses bounded.
const (
	defaultPreviewLimit = 50
	maxPreviewLimit     = 500
)

// topValueCount caps the per-column frequency list in summaries.
const topValueCount = 10

// Store is the dataset repository the service persists through.
type Store interface {
	Create(ds *domain.Dataset) int64
	Get(id int64) (*domain.Dataset, error)
	List() []*domain.Dataset
	Update(ds *domain.Dataset) error
	Delete(id int64) error
	Count() int
}

// Notifier publishes dataset lifecycle events and cleaning failures. The
// websocket hub provides the implementation; a nil Notifier disables
// publishing.
type Notifier interface {
	NotifyDatasetUploaded(meta domain.DatasetMeta)
	NotifyDatasetProcessed(meta domain.DatasetMeta)
	NotifyDatasetDeleted(id int64)
	BroadcastError(code, message string)
}

// Metrics receives dataset lifecycle figures. The infrastructure package
// provides the OTel-backed implementation; a nil recorder disables recording.
type Metrics interface {
	RecordDatasetUploaded(ctx context.Context, format string, rows int)
	AddActiveDatasets(ctx context.Context, delta int)
}

// ExportResult is a rendered export ready to send.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DatasetService owns the dataset lifecycle: parsing uploads into tables,
// running the cleaning pipeline, and serving previews, summaries, and exports
// of the stored results.
type DatasetService struct {
	store    Store
	cleaner  *cleaning.Cleaner
	notifier Notifier
	metrics  Metrics
	logger   *slog.Logger
}

// NewDatasetService creates a dataset service. notifier and metrics may be
// nil; a nil logger falls back to slog.Default.
func NewDatasetService(st Store, cleaner *cleaning.Cleaner, notifier Notifier, metrics Metrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		store:    st,
		cleaner:  cleaner,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "dataset_service")),
	}
}

// Upload parses r as the file named filename and stores the result as a new
// unprocessed dataset. The format comes from the filename extension.
func (s *DatasetService) Upload(ctx context.Context, filename string, size int64, r io.Reader) (*domain.Dataset, error) {
	format, ok := reader.DetectFormat(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	table, err := reader.Read(r, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	ds := &domain.Dataset{
		Filename:   filepath.Base(filename),
		Format:     format,
		SizeBytes:  size,
		UploadedAt: time.Now(),
		Raw:        table,
	}
	id := s.store.Create(ds)

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.Int64("dataset_id", id),
		slog.String("filename", ds.Filename),
		slog.String("format", format),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()),
		slog.Int64("size_bytes", size))

	if s.metrics != nil {
		s.metrics.RecordDatasetUploaded(ctx, format, table.RowCount())
		s.metrics.AddActiveDatasets(ctx, 1)
	}
	if s.notifier != nil {
		s.notifier.NotifyDatasetUploaded(ds.Meta())
	}
	return ds, nil
}

// Process runs the cleaning pipeline against the dataset's raw table and
// stores the cleaned table, stats, and options on the record. Reprocessing an
// already processed dataset replaces its previous run.
func (s *DatasetService) Process(ctx context.Context, id int64, opts domain.Options) (*domain.Dataset, error) {
	ds, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	res, err := s.cleaner.Clean(ctx, ds.Raw, opts)
	if err != nil {
		// Connected clients watching the dataset list get told the run
		// failed; the caller still receives the error for the response.
		if s.notifier != nil {
			s.notifier.BroadcastError("CLEANING_FAILED", fmt.Sprintf("cleaning %q failed: %v", ds.Filename, err))
		}
		return nil, err
	}

	now := time.Now()
	optsCopy := opts
	ds.Cleaned = res.Table
	ds.Stats = &res.Stats
	ds.Options = &optsCopy
	ds.IsProcessed = true
	ds.ProcessedAt = &now

	if err := s.store.Update(ds); err != nil {
		return nil, fmt.Errorf("store cleaned dataset %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "dataset processed",
		slog.Int64("dataset_id", id),
		slog.Int("rows_in", res.Stats.TotalRows),
		slog.Int("rows_out", res.Table.RowCount()),
		slog.Int("duplicates_removed", res.Stats.DuplicatesRemoved),
		slog.Int("null_values_fixed", res.Stats.NullValuesFixed),
		slog.Int("outliers_removed", res.Stats.OutlierCount))

	if s.notifier != nil {
		s.notifier.NotifyDatasetProcessed(ds.Meta())
	}
	return ds, nil
}

// Get returns the dataset record by id.
func (s *DatasetService) Get(ctx context.Context, id int64) (*domain.Dataset, error) {
	return s.lookup(id)
}

// List returns the metadata of every stored dataset, newest first.
func (s *DatasetService) List(ctx context.Context) []domain.DatasetMeta {
	records := s.store.List()
	metas := make([]domain.DatasetMeta, 0, len(records))
	for _, ds := range records {
		metas = append(metas, ds.Meta())
	}
	return metas
}

// Delete removes the dataset.
func (s *DatasetService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrDatasetNotFound, id)
		}
		return fmt.Errorf("delete dataset %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "dataset deleted", slog.Int64("dataset_id", id))

	if s.metrics != nil {
		s.metrics.AddActiveDatasets(ctx, -1)
	}
	if s.notifier != nil {
		s.notifier.NotifyDatasetDeleted(id)
	}
	return nil
}

// Preview returns a row window from one of the dataset's tables. An empty
// view selects the cleaned table when the dataset is processed and the raw
// table otherwise. limit is clamped to [1, 500] with a default of 50.
func (s *DatasetService) Preview(ctx context.Context, id int64, view string, offset, limit int) (*domain.Preview, error) {
	ds, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	table, resolved, err := tableFor(ds, view)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	if limit > maxPreviewLimit {
		limit = maxPreviewLimit
	}
	if offset < 0 {
		offset = 0
	}

	total := len(table.Rows)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &domain.Preview{
		DatasetID: ds.ID,
		View:      resolved,
		Columns:   table.Columns,
		Rows:      table.Rows[offset:end],
		Offset:    offset,
		Limit:     limit,
		TotalRows: total,
	}, nil
}

// Summarize computes per-column figures for one of the dataset's tables:
// inferred type, missing and distinct counts, numeric aggregates where cells
// parse, and the most frequent values. Ties in the frequency list keep
// first-seen order.
func (s *DatasetService) Summarize(ctx context.Context, id int64, view string) ([]domain.ColumnSummary, error) {
	ds, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	table, _, err := tableFor(ds, view)
	if err != nil {
		return nil, err
	}

	types := cleaning.InferTypes(table)

	summaries := make([]domain.ColumnSummary, 0, len(table.Columns))
	for _, col := range table.Columns {
		summaries = append(summaries, summarizeColumn(table, col, types[col]))
	}
	return summaries, nil
}

// Export renders one of the dataset's tables as CSV or XLSX.
func (s *DatasetService) Export(ctx context.Context, id int64, view, format string) (*ExportResult, error) {
	ds, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	table, resolved, err := tableFor(ds, view)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case domain.FormatCSV:
		contentType = "text/csv; charset=utf-8"
		err = exporter.WriteCSV(&buf, table, exporter.CSVOptions{BOM: true})
	case domain.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = exporter.WriteXLSX(&buf, table, "Data")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExportFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export of dataset %d: %w", format, id, err)
	}

	s.logger.InfoContext(ctx, "dataset exported",
		slog.Int64("dataset_id", id),
		slog.String("view", resolved),
		slog.String("format", format),
		slog.Int("bytes", buf.Len()))

	return &ExportResult{
		Filename:    exporter.ExportFilename(ds.Filename, resolved, format),
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}

// Stats returns the cleaning statistics of a processed dataset.
func (s *DatasetService) Stats(ctx context.Context, id int64) (*domain.CleaningStats, error) {
	ds, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !ds.IsProcessed || ds.Stats == nil {
		return nil, fmt.Errorf("%w: dataset %d", ErrDatasetNotProcessed, id)
	}

	statsCopy := *ds.Stats
	return &statsCopy, nil
}

// Report renders the plain-text cleaning report of a processed dataset.
func (s *DatasetService) Report(ctx context.Context, id int64) ([]byte, error) {
	ds, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !ds.IsProcessed {
		return nil, fmt.Errorf("%w: dataset %d", ErrDatasetNotProcessed, id)
	}

	var buf bytes.Buffer
	if err := exporter.WriteReport(&buf, ds); err != nil {
		return nil, fmt.Errorf("render report of dataset %d: %w", id, err)
	}
	return buf.Bytes(), nil
}

func (s *DatasetService) lookup(id int64) (*domain.Dataset, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrDatasetNotFound, id)
		}
		return nil, fmt.Errorf("load dataset %d: %w", id, err)
	}
	return ds, nil
}

// tableFor resolves a view name against the record. An empty view prefers the
// cleaned table when one exists.
func tableFor(ds *domain.Dataset, view string) (*domain.Table, string, error) {
	switch view {
	case "":
		if ds.IsProcessed && ds.Cleaned != nil {
			return ds.Cleaned, domain.ViewCleaned, nil
		}
		return ds.Raw, domain.ViewRaw, nil
	case domain.ViewRaw:
		return ds.Raw, domain.ViewRaw, nil
	case domain.ViewCleaned:
		if !ds.IsProcessed || ds.Cleaned == nil {
			return nil, "", fmt.Errorf("%w: dataset %d has no cleaned table", ErrDatasetNotProcessed, ds.ID)
		}
		return ds.Cleaned, domain.ViewCleaned, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidView, view)
	}
}

// summarizeColumn walks one column. Distinct and frequency counting use the
// cell's textual form, so 1 (integer) and "1" (string) collapse together here
// even though deduplication keeps them apart.
func summarizeColumn(t *domain.Table, col, colType string) domain.ColumnSummary {
	summary := domain.ColumnSummary{Name: col, Type: colType}

	counts := make(map[string]int)
	var order []string
	var numCount int
	var numMin, numMax, numSum float64

	for _, row := range t.Rows {
		v := row[col]
		if v.IsMissing() {
			summary.Missing++
			continue
		}

		raw := v.Raw()
		if counts[raw] == 0 {
			order = append(order, raw)
		}
		counts[raw]++

		if f, ok := v.AsFloat(); ok {
			if numCount == 0 || f < numMin {
				numMin = f
			}
			if numCount == 0 || f > numMax {
				numMax = f
			}
			numSum += f
			numCount++
		}
	}

	summary.Distinct = len(counts)
	if numCount > 0 {
		summary.Numeric = &domain.NumericSummary{
			Count: numCount,
			Min:   numMin,
			Max:   numMax,
			Mean:  numSum / float64(numCount),
		}
	}

	top := make([]domain.ValueCount, 0, len(order))
	for _, raw := range order {
		top = append(top, domain.ValueCount{Value: raw, Count: counts[raw]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > topValueCount {
		top = top[:topValueCount]
	}
	if len(top) > 0 {
		summary.TopValues = top
	}
	return summary
}
