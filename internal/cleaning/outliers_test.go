package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/pkg/contracts/domain"
)

func TestFilterOutliersIQR(t *testing.T) {
	// Sorted values [1 2 3 4 100]: Q1 = index 1 = 2, Q3 = index 3 = 4,
	// IQR = 2, bounds [-1, 7]. Only 100 falls outside.
	table := column("v", "1", "2", "3", "4", "100")

	out, removed := filterOutliers(table)

	assert.Equal(t, 1, removed)
	require.Len(t, out.Rows, 4)
	for _, row := range out.Rows {
		f, ok := row["v"].AsFloat()
		require.True(t, ok)
		assert.LessOrEqual(t, f, 4.0)
	}
}

func TestFilterOutliersKeepsUnparseableRows(t *testing.T) {
	table := column("v", "1", "2", "3", "4", "100", "n/a")

	out, removed := filterOutliers(table)

	// Sorted parseables [1 2 3 4 100], n=5: bounds [-1, 7] as above. The
	// text row is not considered and not removed.
	assert.Equal(t, 1, removed)
	require.Len(t, out.Rows, 5)
	assert.Equal(t, "n/a", out.Rows[4]["v"].Raw())
}

func TestFilterOutliersSkipsTextColumns(t *testing.T) {
	table := column("v", "red", "green", "blue")

	out, removed := filterOutliers(table)

	assert.Equal(t, 0, removed)
	assert.Len(t, out.Rows, 3)
}

func TestFilterOutliersSingleValue(t *testing.T) {
	// One parseable value collapses the band to [v, v]; nothing is removed.
	table := column("v", "42")

	out, removed := filterOutliers(table)

	assert.Equal(t, 0, removed)
	assert.Len(t, out.Rows, 1)
}

func TestFilterOutliersCompoundsAcrossColumns(t *testing.T) {
	mkRow := func(a, b string) domain.Row {
		return domain.Row{"a": domain.StringValue(a), "b": domain.StringValue(b)}
	}
	table := &domain.Table{
		Columns: []string{"a", "b"},
		Rows: []domain.Row{
			mkRow("1", "10"),
			mkRow("2", "11"),
			mkRow("3", "12"),
			mkRow("4", "13"),
			mkRow("100", "1000"),
			mkRow("2", "18"),
		},
	}

	out, removed := filterOutliers(table)

	// Column a: sorted [1 2 2 3 4 100], Q1=2, Q3=4, bounds [-1, 7]; the
	// a=100 row goes, taking its b=1000 with it. Column b then sees
	// [10 11 12 13 18]: Q1=11, Q3=13, bounds [8, 16], so b=18 goes too.
	// Against the unfiltered b column the bounds would have been [0.5, 28.5]
	// and 18 would have survived; the compounding is what removes it.
	assert.Equal(t, 2, removed)
	require.Len(t, out.Rows, 4)
	assert.Equal(t, "13", out.Rows[3]["b"].Raw())
}

func TestFilterOutliersAllWithinBand(t *testing.T) {
	table := column("v", "10", "11", "12", "13", "14")

	out, removed := filterOutliers(table)

	assert.Equal(t, 0, removed)
	assert.Len(t, out.Rows, 5)
}
