package dataset

import (
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Num wraps a float64 as a cty number value.
func Num(f float64) cty.Value {
	return cty.NumberFloatVal(f)
}

// Str wraps a string as a cty string value.
func Str(s string) cty.Value {
	return cty.StringVal(s)
}

// Bool wraps a bool as a cty bool value.
func Bool(b bool) cty.Value {
	return cty.BoolVal(b)
}

// Null is the untyped null cell value.
func Null() cty.Value {
	return cty.NullVal(cty.DynamicPseudoType)
}

// Float extracts a float64 from a numeric cell. The second return is false
// for nulls and non-numbers.
func Float(v cty.Value) (float64, bool) {
	if v.IsNull() || v.Type() != cty.Number {
		return 0, false
	}
	f, _ := v.AsBigFloat().Float64()
	return f, true
}

// InferValue parses a raw CSV field into a typed cell: empty fields become
// null, then bool, then number, falling back to string.
func InferValue(s string) cty.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Null()
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return cty.True
	case "false":
		return cty.False
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Num(f)
	}
	return Str(s)
}

// FormatValue renders a cell for CSV output. Nulls render as empty fields so
// a write/read round trip preserves them.
func FormatValue(v cty.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return v.GoString()
	}
}
