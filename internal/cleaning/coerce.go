package cleaning

import (
	"strconv"
	"strings"

	"datawash/pkg/contracts/domain"
)

// isoDate is the output layout for coerced date cells.
const isoDate = "2006-01-02"

// coerceTypes casts non-missing cells to their column's inferred type:
// integer and float parse into numeric values, dates reformat to YYYY-MM-DD.
// A cell that fails to parse keeps its original value; per-cell failures are
// expected and never surface as errors. String columns pass through. The
// table is modified in place and returned.
func coerceTypes(t *domain.Table, types map[string]string) *domain.Table {
	for _, col := range t.Columns {
		switch types[col] {
		case domain.TypeInteger:
			for _, row := range t.Rows {
				v := row[col]
				if v.IsMissing() {
					continue
				}
				if n, err := strconv.ParseInt(strings.TrimSpace(v.Raw()), 10, 64); err == nil {
					row[col] = domain.IntValue(n)
				}
			}
		case domain.TypeFloat:
			for _, row := range t.Rows {
				v := row[col]
				if v.IsMissing() {
					continue
				}
				if f, ok := v.AsFloat(); ok {
					row[col] = domain.FloatValue(f)
				}
			}
		case domain.TypeDate:
			for _, row := range t.Rows {
				v := row[col]
				if v.IsMissing() {
					continue
				}
				if d, ok := parseDate(v.Raw()); ok {
					row[col] = domain.StringValue(d.Format(isoDate))
				}
			}
		}
	}
	return t
}
