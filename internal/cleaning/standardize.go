package cleaning

import (
	"regexp"
	"strings"

	"datawash/pkg/contracts/domain"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWordChars  = regexp.MustCompile(`[^\w]`)
)

// cleanColumnName applies the standard header transform: trim, lowercase,
// interior whitespace runs collapsed to a single underscore, then every
// remaining non-word character stripped. Trimming comes first so a trailing
// space becomes nothing rather than a trailing underscore.
func cleanColumnName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "_")
	return nonWordChars.ReplaceAllString(s, "")
}

// standardize renames every column with cleanColumnName, infers each
// original column's semantic type, and records one ColumnRename per original
// column (in original order) plus the type tally in stats. It returns the
// renamed table and the cleaned-name to type map the coercer consumes.
//
// Cleaned names that collide are not deduplicated: the later original column
// wins the shared name, both its cells and its inferred type, while the name
// keeps the position of its first occurrence. Renames are recorded for every
// original column regardless.
func standardize(t *domain.Table, stats *domain.CleaningStats) (*domain.Table, map[string]string) {
	renames := make([]domain.ColumnRename, 0, len(t.Columns))
	types := make(map[string]string, len(t.Columns))
	mapping := make(map[string]string, len(t.Columns))

	cleaned := make([]string, 0, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))

	for _, col := range t.Columns {
		newName := cleanColumnName(col)
		colType := inferType(t.ColumnValues(col))

		renames = append(renames, domain.ColumnRename{
			Original: col,
			Cleaned:  newName,
			Type:     colType,
		})
		stats.DataTypeSummary[colType]++
		types[newName] = colType
		mapping[col] = newName

		if !seen[newName] {
			seen[newName] = true
			cleaned = append(cleaned, newName)
		}
	}
	stats.ColumnsRenamed = renames

	rows := make([]domain.Row, len(t.Rows))
	for i, row := range t.Rows {
		nr := make(domain.Row, len(cleaned))
		for _, col := range t.Columns {
			nr[mapping[col]] = row[col]
		}
		rows[i] = nr
	}

	return &domain.Table{Columns: cleaned, Rows: rows}, types
}
