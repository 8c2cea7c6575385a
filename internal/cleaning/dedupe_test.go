package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/pkg/contracts/domain"
)

func TestDedupe(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"a", "b"},
		Rows: []domain.Row{
			{"a": domain.StringValue("1"), "b": domain.StringValue("x")},
			{"a": domain.StringValue("2"), "b": domain.StringValue("y")},
			{"a": domain.StringValue("1"), "b": domain.StringValue("x")},
			{"a": domain.StringValue("1"), "b": domain.StringValue("y")},
			{"a": domain.StringValue("2"), "b": domain.StringValue("y")},
		},
	}

	out, removed := dedupe(table)

	assert.Equal(t, 2, removed)
	require.Len(t, out.Rows, 3)
	// First occurrences survive in original order.
	assert.Equal(t, "x", out.Rows[0]["b"].Raw())
	assert.Equal(t, "2", out.Rows[1]["a"].Raw())
	assert.Equal(t, "y", out.Rows[2]["b"].Raw())
}

func TestDedupeIdempotent(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"a"},
		Rows: []domain.Row{
			{"a": domain.StringValue("1")},
			{"a": domain.StringValue("1")},
			{"a": domain.StringValue("2")},
		},
	}

	once, removedOnce := dedupe(table)
	twice, removedTwice := dedupe(once)

	assert.Equal(t, 1, removedOnce)
	assert.Equal(t, 0, removedTwice)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestDedupeKindsStayDistinct(t *testing.T) {
	// String "1" and integer 1 render identically but are different cells.
	table := &domain.Table{
		Columns: []string{"a"},
		Rows: []domain.Row{
			{"a": domain.StringValue("1")},
			{"a": domain.IntValue(1)},
			{"a": domain.NullValue()},
			{"a": domain.StringValue("")},
		},
	}

	out, removed := dedupe(table)

	assert.Equal(t, 0, removed)
	assert.Len(t, out.Rows, 4)
}

func TestDedupeSeparatorSafety(t *testing.T) {
	// Cell boundaries must not blur: ("ab","c") and ("a","bc") differ.
	table := &domain.Table{
		Columns: []string{"a", "b"},
		Rows: []domain.Row{
			{"a": domain.StringValue("ab"), "b": domain.StringValue("c")},
			{"a": domain.StringValue("a"), "b": domain.StringValue("bc")},
		},
	}

	out, removed := dedupe(table)

	assert.Equal(t, 0, removed)
	assert.Len(t, out.Rows, 2)
}
