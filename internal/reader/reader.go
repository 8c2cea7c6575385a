// Package reader parses uploaded tabular files (CSV, XLS, XLSX) into tables.
// The first row supplies the column names; every cell enters as text. Type
// interpretation is the cleaning pipeline's job, not the reader's.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"datawash/pkg/contracts/domain"
)

var (
	// ErrUnknownFormat reports a format outside csv, xls, and xlsx.
	ErrUnknownFormat = errors.New("unsupported file format")

	// ErrEmptyFile reports a file without a usable header row.
	ErrEmptyFile = errors.New("file contains no header row")
)

// DetectFormat resolves a filename extension to a supported format.
func DetectFormat(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return domain.FormatCSV, true
	case ".xls":
		return domain.FormatXLS, true
	case ".xlsx":
		return domain.FormatXLSX, true
	}
	return "", false
}

// Read parses r as the given format and returns the table.
func Read(r io.Reader, format string) (*domain.Table, error) {
	switch format {
	case domain.FormatCSV:
		return readCSV(r)
	case domain.FormatXLSX:
		return readXLSX(r)
	case domain.FormatXLS:
		return readXLS(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadFile opens path, resolves the format from its extension, and parses it.
func ReadFile(path string) (*domain.Table, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format)
}

// tableFrom assembles a table from a header row and data records. Short
// records are padded to the header width and long ones truncated; absent and
// empty cells go through blank, so CSV keeps its empty-string sentinel while
// spreadsheet blanks become null.
//
// Duplicate header names collapse onto one column at the first occurrence
// position, with the rightmost duplicate's cell winning, matching how the
// standardizer treats colliding cleaned names.
func tableFrom(header []string, records [][]string, blank func(string) domain.Value) (*domain.Table, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	nonEmpty := false
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			nonEmpty = true
			break
		}
	}
	if !nonEmpty {
		return nil, ErrEmptyFile
	}

	columns := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if !seen[h] {
			seen[h] = true
			columns = append(columns, h)
		}
	}

	rows := make([]domain.Row, len(records))
	for i, rec := range records {
		row := make(domain.Row, len(columns))
		for j, name := range header {
			cell := ""
			if j < len(rec) {
				cell = rec[j]
			}
			row[name] = blank(cell)
		}
		rows[i] = row
	}

	return &domain.Table{Columns: columns, Rows: rows}, nil
}
