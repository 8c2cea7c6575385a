package reader

import (
	"encoding/csv"
	"fmt"
	"io"

	"datawash/pkg/contracts/domain"
)

// readCSV parses CSV input. Records may be ragged; rows are normalized to
// the header width. Empty cells stay as the empty-string sentinel.
func readCSV(r io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return tableFrom(records[0], records[1:], func(cell string) domain.Value {
		return domain.StringValue(cell)
	})
}
