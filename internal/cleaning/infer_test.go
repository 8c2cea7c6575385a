package cleaning

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"datawash/pkg/contracts/domain"
)

func strValues(ss ...string) []domain.Value {
	out := make([]domain.Value, len(ss))
	for i, s := range ss {
		out[i] = domain.StringValue(s)
	}
	return out
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []domain.Value
		want   string
	}{
		{
			name:   "integers",
			values: strValues("1", "2", "300"),
			want:   domain.TypeInteger,
		},
		{
			name:   "negative integers",
			values: strValues("-1", "0", "17"),
			want:   domain.TypeInteger,
		},
		{
			name:   "floats",
			values: strValues("1.5", "2", "3"),
			want:   domain.TypeFloat,
		},
		{
			name:   "numerics with gaps stay numeric",
			values: strValues("1", "", "3"),
			want:   domain.TypeInteger,
		},
		{
			name:   "all empty classifies integer",
			values: strValues("", "", ""),
			want:   domain.TypeInteger,
		},
		{
			name:   "nulls only classifies integer",
			values: []domain.Value{domain.NullValue(), domain.NullValue()},
			want:   domain.TypeInteger,
		},
		{
			name:   "iso dates",
			values: strValues("2024-01-15", "2024-02-01"),
			want:   domain.TypeDate,
		},
		{
			name:   "slash dates with gaps",
			values: strValues("01/15/2024", "", "02/01/2024"),
			want:   domain.TypeDate,
		},
		{
			name:   "mixed date and text",
			values: strValues("2024-01-15", "tomorrow"),
			want:   domain.TypeString,
		},
		{
			name:   "text",
			values: strValues("alpha", "beta"),
			want:   domain.TypeString,
		},
		{
			name:   "numeric then text",
			values: strValues("1", "2", "x"),
			want:   domain.TypeString,
		},
		{
			name:   "decimal point in padded string",
			values: strValues(" 1.5 ", "2"),
			want:   domain.TypeFloat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferType(tt.values))
		})
	}
}

func TestInferTypeSampleCap(t *testing.T) {
	// A disqualifying value beyond the first 100 must not be considered.
	values := make([]domain.Value, 0, 101)
	for i := 0; i < 100; i++ {
		values = append(values, domain.StringValue(strconv.Itoa(i)))
	}
	values = append(values, domain.StringValue("not a number"))

	assert.Equal(t, domain.TypeInteger, inferType(values))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "iso", input: "2024-03-09", want: "2024-03-09", ok: true},
		{name: "slash us", input: "03/09/2024", want: "2024-03-09", ok: true},
		{name: "single digit us", input: "3/9/2024", want: "2024-03-09", ok: true},
		{name: "month name", input: "Mar 9, 2024", want: "2024-03-09", ok: true},
		{name: "padded", input: " 2024-03-09 ", want: "2024-03-09", ok: true},
		{name: "empty", input: "", ok: false},
		{name: "number", input: "42", ok: false},
		{name: "text", input: "yesterday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format(isoDate))
			}
		})
	}
}
