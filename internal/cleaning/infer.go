package cleaning

import (
	"strings"
	"time"

	"datawash/pkg/contracts/domain"
)

// inferSampleSize caps how many leading values the inferencer inspects per
// column.
const inferSampleSize = 100

// dateLayouts are tried in order, first match wins. Shared by the
// inferencer and the type coercer so both agree on what a date is.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// parseDate parses s against the supported layouts.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InferTypes classifies every column of the table.
func InferTypes(t *domain.Table) map[string]string {
	types := make(map[string]string, len(t.Columns))
	for _, col := range t.Columns {
		types[col] = inferType(t.ColumnValues(col))
	}
	return types
}

// inferType classifies a column from up to its first 100 values. Numeric is
// checked first: if every sampled value is missing or parses as a finite
// number, the column is "float" when any parseable textual form contains a
// decimal point and "integer" otherwise. Dates are checked next, strings
// catch the rest.
//
// An entirely missing sample classifies as "integer" because the numeric
// check passes vacuously and wins by order. Known quirk, kept on purpose:
// reported type summaries depend on it.
func inferType(values []domain.Value) string {
	sample := values
	if len(sample) > inferSampleSize {
		sample = sample[:inferSampleSize]
	}

	numeric := true
	sawDecimal := false
	for _, v := range sample {
		if v.IsMissing() {
			continue
		}
		if _, ok := v.AsFloat(); !ok {
			numeric = false
			break
		}
		if strings.Contains(v.Raw(), ".") {
			sawDecimal = true
		}
	}
	if numeric {
		if sawDecimal {
			return domain.TypeFloat
		}
		return domain.TypeInteger
	}

	isDate := true
	for _, v := range sample {
		if v.IsMissing() {
			continue
		}
		if _, ok := parseDate(v.Raw()); !ok {
			isDate = false
			break
		}
	}
	if isDate {
		return domain.TypeDate
	}
	return domain.TypeString
}
