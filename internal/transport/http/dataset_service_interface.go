package http

import (
	"context"
	"io"

	"datawash/internal/services"
	"datawash/pkg/contracts/domain"
)

// DatasetServiceInterface defines the interface for dataset operations
type DatasetServiceInterface interface {
	Upload(ctx context.Context, filename string, size int64, r io.Reader) (*domain.Dataset, error)
	Process(ctx context.Context, id int64, opts domain.Options) (*domain.Dataset, error)
	Get(ctx context.Context, id int64) (*domain.Dataset, error)
	List(ctx context.Context) []domain.DatasetMeta
	Delete(ctx context.Context, id int64) error

	// Read methods over the raw or cleaned table
	Preview(ctx context.Context, id int64, view string, offset, limit int) (*domain.Preview, error)
	Summarize(ctx context.Context, id int64, view string) ([]domain.ColumnSummary, error)
	Export(ctx context.Context, id int64, view, format string) (*services.ExportResult, error)
	Stats(ctx context.Context, id int64) (*domain.CleaningStats, error)
	Report(ctx context.Context, id int64) ([]byte, error)
}
