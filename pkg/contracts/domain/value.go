package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the scalar kinds a table cell can hold.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
)

// Value is an immutable scalar cell: null, string, integer, or float.
// The zero Value is null.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
}

// NullValue returns the null cell value.
func NullValue() Value { return Value{} }

// StringValue returns a string cell value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue returns an integer cell value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float cell value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// Kind reports the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsMissing reports whether the cell counts as missing: null or the
// empty-string sentinel.
func (v Value) IsMissing() bool {
	return v.kind == KindNull || (v.kind == KindString && v.s == "")
}

// Raw returns the canonical textual form of the value. Null renders as the
// empty string; floats use the shortest decimal form that round-trips.
func (v Value) Raw() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// AsFloat returns the numeric view of the value. Strings are trimmed before
// parsing; non-finite results and unparseable values report ok=false.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return 0, false
		}
		return v.f, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Native returns the value as a plain Go scalar: nil, string, int64, or
// float64.
func (v Value) Native() interface{} {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return nil
	}
}

// MarshalJSON renders null as JSON null, strings as JSON strings, and
// numeric kinds as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	default:
		return []byte("null"), nil
	}
}
