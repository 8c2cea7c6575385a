package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"datawash/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 encoded CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV writing behavior.
type CSVOptions struct {
	BOM bool // prefix the output with a UTF-8 BOM for Excel compatibility
}

// WriteCSV serializes the table to w: one header row from the table's
// columns, then each row's cells in column order, rendered through their
// canonical textual form.
func WriteCSV(w io.Writer, t *domain.Table, options CSVOptions) error {
	if options.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			record[j] = row[col].Raw()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the table to a file, creating parent directories as
// needed. The BOM is always written for file targets.
func WriteCSVFile(path string, t *domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteCSV(file, t, CSVOptions{BOM: true})
}

// ExportFilename derives the download name for a dataset export: the
// original base name, the view suffix, and the format extension.
func ExportFilename(original, view, format string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" {
		base = "dataset"
	}
	return fmt.Sprintf("%s_%s.%s", base, view, format)
}
