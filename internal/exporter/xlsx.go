package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"datawash/pkg/contracts/domain"
)

// WriteXLSX serializes the table to w as a single-sheet workbook. Numeric
// cells are written as native numbers so spreadsheet formulas see them as
// such; nulls stay empty.
func WriteXLSX(w io.Writer, t *domain.Table, sheet string) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if sheet != "" && sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	} else {
		sheet = defaultSheet
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	cells := make([]interface{}, len(t.Columns))
	for i, row := range t.Rows {
		for j, col := range t.Columns {
			cells[j] = row[col].Native()
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
