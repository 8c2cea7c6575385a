package cleaning

import (
	"sort"

	"datawash/pkg/contracts/domain"
)

// filterOutliers removes rows whose cell in a numeric-looking column falls
// outside that column's IQR band. Quartiles are positional: Q1 at index
// floor(n*0.25) and Q3 at floor(n*0.75) over the sorted parseable values,
// not interpolated. Cells that do not parse never cause removal.
//
// Columns are processed in table order against the rows remaining from the
// previous column's pass, so filtering compounds across columns. Reported
// counts depend on that ordering; do not parallelize or reorder.
func filterOutliers(t *domain.Table) (*domain.Table, int) {
	rows := t.Rows
	removed := 0

	for _, col := range t.Columns {
		parsed := make([]float64, 0, len(rows))
		for _, row := range rows {
			if f, ok := row[col].AsFloat(); ok {
				parsed = append(parsed, f)
			}
		}
		if len(parsed) == 0 {
			continue
		}

		sort.Float64s(parsed)
		q1 := parsed[len(parsed)/4]
		q3 := parsed[len(parsed)*3/4]
		iqr := q3 - q1
		lo := q1 - 1.5*iqr
		hi := q3 + 1.5*iqr

		kept := make([]domain.Row, 0, len(rows))
		for _, row := range rows {
			if f, ok := row[col].AsFloat(); ok && (f < lo || f > hi) {
				removed++
				continue
			}
			kept = append(kept, row)
		}
		rows = kept
	}

	return &domain.Table{Columns: t.Columns, Rows: rows}, removed
}
