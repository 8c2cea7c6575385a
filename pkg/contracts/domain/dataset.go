package domain

import "time"

// Table views an endpoint can address.
const (
	ViewRaw     = "raw"
	ViewCleaned = "cleaned"
)

// Supported upload formats.
const (
	FormatCSV  = "csv"
	FormatXLS  = "xls"
	FormatXLSX = "xlsx"
)

// Dataset is the stored record for one uploaded file: the raw table as
// parsed, and, once processed, the cleaned table together with the stats and
// options of the run that produced it.
type Dataset struct {
	ID          int64
	Filename    string
	Format      string
	SizeBytes   int64
	UploadedAt  time.Time
	Raw         *Table
	Cleaned     *Table
	Stats       *CleaningStats
	Options     *Options
	IsProcessed bool
	ProcessedAt *time.Time
}

// Meta returns the transport view of the record, without row data.
func (d *Dataset) Meta() DatasetMeta {
	m := DatasetMeta{
		ID:          d.ID,
		Filename:    d.Filename,
		Format:      d.Format,
		SizeBytes:   d.SizeBytes,
		UploadedAt:  d.UploadedAt,
		RawRows:     d.Raw.RowCount(),
		RawColumns:  d.Raw.ColumnCount(),
		IsProcessed: d.IsProcessed,
		ProcessedAt: d.ProcessedAt,
		Stats:       d.Stats,
		Options:     d.Options,
	}
	if d.Cleaned != nil {
		m.CleanedRows = d.Cleaned.RowCount()
	}
	return m
}

// DatasetMeta is the row-free summary of a Dataset returned by the API.
type DatasetMeta struct {
	ID          int64          `json:"id"`
	Filename    string         `json:"filename"`
	Format      string         `json:"format"`
	SizeBytes   int64          `json:"size_bytes"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	RawRows     int            `json:"raw_rows"`
	RawColumns  int            `json:"raw_columns"`
	CleanedRows int            `json:"cleaned_rows,omitempty"`
	IsProcessed bool           `json:"is_processed"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	Stats       *CleaningStats `json:"stats,omitempty"`
	Options     *Options       `json:"options,omitempty"`
}

// Preview is a window of rows from one of a dataset's tables.
type Preview struct {
	DatasetID int64    `json:"dataset_id"`
	View      string   `json:"view"`
	Columns   []string `json:"columns"`
	Rows      []Row    `json:"rows"`
	Offset    int      `json:"offset"`
	Limit     int      `json:"limit"`
	TotalRows int      `json:"total_rows"`
}

// ValueCount pairs a distinct cell's textual form with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericSummary holds the aggregates of a column's numerically parseable
// cells.
type NumericSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// ColumnSummary carries the per-column figures chart and preview views are
// built from.
type ColumnSummary struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Missing   int             `json:"missing"`
	Distinct  int             `json:"distinct"`
	Numeric   *NumericSummary `json:"numeric,omitempty"`
	TopValues []ValueCount    `json:"top_values,omitempty"`
}
