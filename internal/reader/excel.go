package reader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"datawash/pkg/contracts/domain"
)

// excelBlank maps spreadsheet cells: blanks become null, everything else
// enters as text.
func excelBlank(cell string) domain.Value {
	if cell == "" {
		return domain.NullValue()
	}
	return domain.StringValue(cell)
}

// readXLSX parses an OOXML workbook. Only the first sheet is read.
func readXLSX(r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return tableFrom(records[0], records[1:], excelBlank)
}

// readXLS parses a legacy BIFF workbook. Only the first sheet is read. The
// xls library needs random access, so the input is buffered first.
func readXLS(r io.Reader) (*domain.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xls: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrEmptyFile
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		width := row.LastCol()
		rec := make([]string, width)
		for j := 0; j < width; j++ {
			rec[j] = row.Col(j)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return tableFrom(records[0], records[1:], excelBlank)
}
