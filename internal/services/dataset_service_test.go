package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/internal/cleaning"
	"datawash/internal/store"
	"datawash/pkg/contracts/domain"
)

const sampleCSV = "Name,Score\nada,10\nbo,\nada,10\ncy,4\n"

type fakeNotifier struct {
	uploaded  []domain.DatasetMeta
	processed []domain.DatasetMeta
	deleted   []int64
	errors    []string
}

func (f *fakeNotifier) NotifyDatasetUploaded(meta domain.DatasetMeta)  { f.uploaded = append(f.uploaded, meta) }
func (f *fakeNotifier) NotifyDatasetProcessed(meta domain.DatasetMeta) { f.processed = append(f.processed, meta) }
func (f *fakeNotifier) NotifyDatasetDeleted(id int64)                  { f.deleted = append(f.deleted, id) }
func (f *fakeNotifier) BroadcastError(code, message string) {
	f.errors = append(f.errors, code+": "+message)
}

type fakeMetrics struct {
	uploads int
	active  int
}

func (f *fakeMetrics) RecordDatasetUploaded(ctx context.Context, format string, rows int) {
	f.uploads++
}

func (f *fakeMetrics) AddActiveDatasets(ctx context.Context, delta int) {
	f.active += delta
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*DatasetService, *fakeNotifier, *fakeMetrics) {
	logger := discardLogger()
	notifier := &fakeNotifier{}
	metrics := &fakeMetrics{}
	svc := NewDatasetService(store.NewMemoryStore(), cleaning.NewCleaner(logger, nil), notifier, metrics, logger)
	return svc, notifier, metrics
}

func uploadSample(t *testing.T, svc *DatasetService) *domain.Dataset {
	t.Helper()
	ds, err := svc.Upload(context.Background(), "scores.csv", int64(len(sampleCSV)), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return ds
}

func TestDatasetServiceUpload(t *testing.T) {
	svc, notifier, metrics := newTestService()

	ds := uploadSample(t, svc)

	assert.Equal(t, int64(1), ds.ID)
	assert.Equal(t, "scores.csv", ds.Filename)
	assert.Equal(t, domain.FormatCSV, ds.Format)
	assert.Equal(t, int64(len(sampleCSV)), ds.SizeBytes)
	assert.False(t, ds.IsProcessed)
	assert.Equal(t, []string{"Name", "Score"}, ds.Raw.Columns)
	assert.Equal(t, 4, ds.Raw.RowCount())

	require.Len(t, notifier.uploaded, 1)
	assert.Equal(t, int64(1), notifier.uploaded[0].ID)
	assert.Equal(t, 1, metrics.uploads)
	assert.Equal(t, 1, metrics.active)

	stored, err := svc.Get(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "scores.csv", stored.Filename)
}

func TestDatasetServiceUploadRejectsUnknownExtension(t *testing.T) {
	svc, notifier, _ := newTestService()

	_, err := svc.Upload(context.Background(), "data.parquet", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, notifier.uploaded)
}

func TestDatasetServiceUploadRejectsUnparseableFile(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{name: "empty csv", filename: "empty.csv", content: ""},
		{name: "blank header", filename: "blank.csv", content: ",,\na,b,c\n"},
		{name: "garbage xlsx", filename: "bad.xlsx", content: "not a zip archive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tt.filename, int64(len(tt.content)), strings.NewReader(tt.content))
			assert.ErrorIs(t, err, ErrInvalidFile)
		})
	}
}

func TestDatasetServiceProcess(t *testing.T) {
	svc, notifier, _ := newTestService()
	ds := uploadSample(t, svc)

	opts := domain.Options{
		StandardizeColumnNames: true,
		MissingValueStrategy:   domain.StrategyMean,
	}
	processed, err := svc.Process(context.Background(), ds.ID, opts)
	require.NoError(t, err)

	assert.True(t, processed.IsProcessed)
	require.NotNil(t, processed.ProcessedAt)
	require.NotNil(t, processed.Stats)
	assert.Equal(t, 4, processed.Stats.TotalRows)
	assert.Equal(t, 1, processed.Stats.DuplicatesRemoved)
	assert.Equal(t, 1, processed.Stats.NullValuesFixed)
	assert.Equal(t, []string{"name", "score"}, processed.Cleaned.Columns)
	assert.Equal(t, 3, processed.Cleaned.RowCount())

	// Mean of the remaining scores 10 and 4.
	assert.Equal(t, "7", processed.Cleaned.Rows[1]["score"].Raw())

	// The record in the store reflects the run.
	stored, err := svc.Get(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsProcessed)
	require.NotNil(t, stored.Options)
	assert.Equal(t, domain.StrategyMean, stored.Options.MissingValueStrategy)

	require.Len(t, notifier.processed, 1)
	assert.Equal(t, 3, notifier.processed[0].CleanedRows)
}

func TestDatasetServiceProcessErrors(t *testing.T) {
	svc, notifier, _ := newTestService()
	ds := uploadSample(t, svc)

	// Unknown ids fail before any cleaning starts, so nothing is broadcast.
	_, err := svc.Process(context.Background(), 999, domain.Options{MissingValueStrategy: domain.StrategyMean})
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.Empty(t, notifier.errors)

	// Failed cleaning runs are announced to connected clients.
	_, err = svc.Process(context.Background(), ds.ID, domain.Options{MissingValueStrategy: "majority"})
	assert.ErrorIs(t, err, cleaning.ErrUnsupportedStrategy)
	require.Len(t, notifier.errors, 1)
	assert.Contains(t, notifier.errors[0], "CLEANING_FAILED")
	assert.Contains(t, notifier.errors[0], "scores.csv")
}

func TestDatasetServiceListAndDelete(t *testing.T) {
	svc, notifier, metrics := newTestService()
	first := uploadSample(t, svc)
	second, err := svc.Upload(context.Background(), "other.csv", 4, strings.NewReader("a\n1\n"))
	require.NoError(t, err)

	metas := svc.List(context.Background())
	require.Len(t, metas, 2)
	assert.Equal(t, second.ID, metas[0].ID)
	assert.Equal(t, first.ID, metas[1].ID)

	require.NoError(t, svc.Delete(context.Background(), first.ID))
	assert.Equal(t, []int64{first.ID}, notifier.deleted)
	assert.Equal(t, 1, metrics.active)

	_, err = svc.Get(context.Background(), first.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	err = svc.Delete(context.Background(), first.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDatasetServicePreview(t *testing.T) {
	svc, _, _ := newTestService()
	ds := uploadSample(t, svc)

	// Unprocessed datasets fall back to the raw table.
	preview, err := svc.Preview(context.Background(), ds.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.ViewRaw, preview.View)
	assert.Equal(t, 4, preview.TotalRows)
	assert.Len(t, preview.Rows, 4)
	assert.Equal(t, defaultPreviewLimit, preview.Limit)

	// Window into the middle of the table.
	preview, err = svc.Preview(context.Background(), ds.ID, domain.ViewRaw, 1, 2)
	require.NoError(t, err)
	assert.Len(t, preview.Rows, 2)
	assert.Equal(t, 1, preview.Offset)
	assert.Equal(t, "bo", preview.Rows[0]["Name"].Raw())

	// Offset past the end yields an empty window, not an error.
	preview, err = svc.Preview(context.Background(), ds.ID, domain.ViewRaw, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, preview.Rows)
	assert.Equal(t, 4, preview.TotalRows)

	_, err = svc.Preview(context.Background(), ds.ID, domain.ViewCleaned, 0, 0)
	assert.ErrorIs(t, err, ErrDatasetNotProcessed)

	_, err = svc.Preview(context.Background(), ds.ID, "original", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidView)

	// After processing the default view switches to cleaned.
	_, err = svc.Process(context.Background(), ds.ID, domain.Options{MissingValueStrategy: domain.StrategyMode})
	require.NoError(t, err)
	preview, err = svc.Preview(context.Background(), ds.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.ViewCleaned, preview.View)
	assert.Equal(t, 3, preview.TotalRows)
}

func TestDatasetServiceSummarize(t *testing.T) {
	svc, _, _ := newTestService()
	ds := uploadSample(t, svc)

	summaries, err := svc.Summarize(context.Background(), ds.ID, domain.ViewRaw)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	name := summaries[0]
	assert.Equal(t, "Name", name.Name)
	assert.Equal(t, domain.TypeString, name.Type)
	assert.Equal(t, 0, name.Missing)
	assert.Equal(t, 3, name.Distinct)
	assert.Nil(t, name.Numeric)
	require.NotEmpty(t, name.TopValues)
	assert.Equal(t, domain.ValueCount{Value: "ada", Count: 2}, name.TopValues[0])
	// Ties keep first-seen order.
	assert.Equal(t, "bo", name.TopValues[1].Value)
	assert.Equal(t, "cy", name.TopValues[2].Value)

	score := summaries[1]
	assert.Equal(t, "Score", score.Name)
	assert.Equal(t, domain.TypeInteger, score.Type)
	assert.Equal(t, 1, score.Missing)
	assert.Equal(t, 2, score.Distinct)
	require.NotNil(t, score.Numeric)
	assert.Equal(t, 3, score.Numeric.Count)
	assert.InDelta(t, 4.0, score.Numeric.Min, 1e-9)
	assert.InDelta(t, 10.0, score.Numeric.Max, 1e-9)
	assert.InDelta(t, 8.0, score.Numeric.Mean, 1e-9)
}

func TestDatasetServiceExport(t *testing.T) {
	svc, _, _ := newTestService()
	ds := uploadSample(t, svc)

	res, err := svc.Export(context.Background(), ds.ID, domain.ViewRaw, domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "scores_raw.csv", res.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", res.ContentType)
	assert.Equal(t, "\uFEFF"+sampleCSV, string(res.Data))

	res, err = svc.Export(context.Background(), ds.ID, domain.ViewRaw, domain.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "scores_raw.xlsx", res.Filename)
	assert.NotEmpty(t, res.Data)

	_, err = svc.Export(context.Background(), ds.ID, domain.ViewRaw, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedExportFormat)

	_, err = svc.Export(context.Background(), ds.ID, domain.ViewCleaned, domain.FormatCSV)
	assert.ErrorIs(t, err, ErrDatasetNotProcessed)
}

func TestDatasetServiceStats(t *testing.T) {
	svc, _, _ := newTestService()
	ds := uploadSample(t, svc)

	_, err := svc.Stats(context.Background(), ds.ID)
	assert.ErrorIs(t, err, ErrDatasetNotProcessed)

	_, err = svc.Stats(context.Background(), 999)
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = svc.Process(context.Background(), ds.ID, domain.Options{
		StandardizeColumnNames: true,
		MissingValueStrategy:   domain.StrategyMean,
	})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, 1, stats.NullValuesFixed)

	// The snapshot is a copy; mutating it does not touch the record.
	stats.DuplicatesRemoved = 99
	again, err := svc.Stats(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.DuplicatesRemoved)
}

func TestDatasetServiceReport(t *testing.T) {
	svc, _, _ := newTestService()
	ds := uploadSample(t, svc)

	_, err := svc.Report(context.Background(), ds.ID)
	assert.ErrorIs(t, err, ErrDatasetNotProcessed)

	_, err = svc.Process(context.Background(), ds.ID, domain.Options{MissingValueStrategy: domain.StrategyMode})
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Contains(t, string(report), "scores.csv")
	assert.Contains(t, string(report), "Duplicates removed:   1")
}
