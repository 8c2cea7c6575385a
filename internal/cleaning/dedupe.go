package cleaning

import (
	"strings"

	"datawash/pkg/contracts/domain"
)

// Separators for the canonical row serialization. Control characters keep
// adjacent cells from colliding ("ab"+"c" vs "a"+"bc").
const (
	fieldSep = '\x1f'
	kindSep  = '\x1e'
)

func kindTag(k domain.ValueKind) byte {
	switch k {
	case domain.KindString:
		return 's'
	case domain.KindInt:
		return 'i'
	case domain.KindFloat:
		return 'f'
	default:
		return 'n'
	}
}

// rowKey serializes a row canonically: cells in column order, each tagged
// with its kind so IntValue(1) and StringValue("1") stay distinct.
func rowKey(columns []string, row domain.Row) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteByte(fieldSep)
		}
		v := row[col]
		b.WriteByte(kindTag(v.Kind()))
		b.WriteByte(kindSep)
		b.WriteString(v.Raw())
	}
	return b.String()
}

// dedupe drops rows whose canonical serialization was already seen, keeping
// first occurrences in their original order.
func dedupe(t *domain.Table) (*domain.Table, int) {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := make([]domain.Row, 0, len(t.Rows))
	removed := 0

	for _, row := range t.Rows {
		key := rowKey(t.Columns, row)
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	return &domain.Table{Columns: t.Columns, Rows: kept}, removed
}
