// Package aggregate provides null-aware reducers over value sequences.
// They back both Go-coded attribute features and the aggregation functions
// exposed to manifest expressions.
package aggregate

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Sum adds all non-null numeric values. An empty or all-null input sums to
// zero, matching the usual analytics convention.
func Sum(values []cty.Value) (cty.Value, error) {
	total := 0.0
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("sum: element %d: %w", i, err)
		}
		total += f
	}
	return cty.NumberFloatVal(total), nil
}

// Mean averages all non-null numeric values. All-null input yields null.
func Mean(values []cty.Value) (cty.Value, error) {
	total := 0.0
	n := 0
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("mean: element %d: %w", i, err)
		}
		total += f
		n++
	}
	if n == 0 {
		return cty.NullVal(cty.Number), nil
	}
	return cty.NumberFloatVal(total / float64(n)), nil
}

// Min returns the smallest non-null numeric value, or null when none exist.
func Min(values []cty.Value) (cty.Value, error) {
	return extreme(values, "min", func(candidate, best float64) bool { return candidate < best })
}

// Max returns the largest non-null numeric value, or null when none exist.
func Max(values []cty.Value) (cty.Value, error) {
	return extreme(values, "max", func(candidate, best float64) bool { return candidate > best })
}

// Count returns the number of non-null values.
func Count(values []cty.Value) (cty.Value, error) {
	n := 0
	for _, v := range values {
		if !v.IsNull() {
			n++
		}
	}
	return cty.NumberIntVal(int64(n)), nil
}

// CountDistinct returns the number of distinct non-null values.
func CountDistinct(values []cty.Value) (cty.Value, error) {
	seen := make(map[string]bool)
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		seen[v.GoString()] = true
	}
	return cty.NumberIntVal(int64(len(seen))), nil
}

// First returns the first non-null value, or null when none exist. Groups
// keep first-seen row order, so this is deterministic.
func First(values []cty.Value) (cty.Value, error) {
	for _, v := range values {
		if !v.IsNull() {
			return v, nil
		}
	}
	return cty.NullVal(cty.DynamicPseudoType), nil
}

func extreme(values []cty.Value, op string, better func(candidate, best float64) bool) (cty.Value, error) {
	var best float64
	found := false
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		f, err := toFloat(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: element %d: %w", op, i, err)
		}
		if !found || better(f, best) {
			best = f
			found = true
		}
	}
	if !found {
		return cty.NullVal(cty.Number), nil
	}
	return cty.NumberFloatVal(best), nil
}

func toFloat(v cty.Value) (float64, error) {
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number, got %s", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
