package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/pkg/contracts/domain"
)

func TestCoerceTypesInteger(t *testing.T) {
	table := column("n", "12", " 7 ", "12.5", "abc", "")
	types := map[string]string{"n": domain.TypeInteger}

	out := coerceTypes(table, types)

	assert.Equal(t, domain.IntValue(12), out.Rows[0]["n"])
	assert.Equal(t, domain.IntValue(7), out.Rows[1]["n"])
	// Fractional and textual cells keep their original value.
	assert.Equal(t, domain.StringValue("12.5"), out.Rows[2]["n"])
	assert.Equal(t, domain.StringValue("abc"), out.Rows[3]["n"])
	// Missing cells are never coerced.
	assert.True(t, out.Rows[4]["n"].IsMissing())
	assert.Equal(t, domain.KindString, out.Rows[4]["n"].Kind())
}

func TestCoerceTypesFloat(t *testing.T) {
	table := column("f", "1.5", "2", "oops")
	types := map[string]string{"f": domain.TypeFloat}

	out := coerceTypes(table, types)

	assert.Equal(t, domain.FloatValue(1.5), out.Rows[0]["f"])
	assert.Equal(t, domain.FloatValue(2), out.Rows[1]["f"])
	assert.Equal(t, domain.StringValue("oops"), out.Rows[2]["f"])
}

func TestCoerceTypesDate(t *testing.T) {
	table := column("d", "01/15/2024", "2024-02-01", "soon")
	types := map[string]string{"d": domain.TypeDate}

	out := coerceTypes(table, types)

	assert.Equal(t, "2024-01-15", out.Rows[0]["d"].Raw())
	assert.Equal(t, "2024-02-01", out.Rows[1]["d"].Raw())
	assert.Equal(t, "soon", out.Rows[2]["d"].Raw())
}

func TestCoerceTypesStringColumnUntouched(t *testing.T) {
	table := column("s", "123", "4.5")
	types := map[string]string{"s": domain.TypeString}

	out := coerceTypes(table, types)

	assert.Equal(t, domain.StringValue("123"), out.Rows[0]["s"])
	assert.Equal(t, domain.StringValue("4.5"), out.Rows[1]["s"])
}

func TestCoerceTypesStable(t *testing.T) {
	table := column("n", "1", "2", "3")
	types := map[string]string{"n": domain.TypeInteger}

	once := coerceTypes(table, types).Clone()
	twice := coerceTypes(table, types)

	require.Equal(t, once.Rows, twice.Rows)
	assert.Equal(t, domain.KindInt, twice.Rows[0]["n"].Kind())
}

func TestCoerceTypesUnknownColumnIgnored(t *testing.T) {
	table := column("x", "1")

	out := coerceTypes(table, map[string]string{})

	assert.Equal(t, domain.StringValue("1"), out.Rows[0]["x"])
}
