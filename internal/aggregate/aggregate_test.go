package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/aggregate"
)

func nums(fs ...float64) []cty.Value {
	out := make([]cty.Value, len(fs))
	for i, f := range fs {
		out[i] = cty.NumberFloatVal(f)
	}
	return out
}

func withNull(values []cty.Value) []cty.Value {
	return append([]cty.Value{cty.NullVal(cty.Number)}, values...)
}

func assertNum(t *testing.T, want float64, got cty.Value) {
	t.Helper()
	require.False(t, got.IsNull())
	f, _ := got.AsBigFloat().Float64()
	assert.Equal(t, want, f)
}

func TestSum(t *testing.T) {
	v, err := aggregate.Sum(nums(100, 150))
	require.NoError(t, err)
	assertNum(t, 250, v)

	v, err = aggregate.Sum(withNull(nums(1, 2)))
	require.NoError(t, err)
	assertNum(t, 3, v)

	// Empty sums to zero, not null.
	v, err = aggregate.Sum(nil)
	require.NoError(t, err)
	assertNum(t, 0, v)

	_, err = aggregate.Sum([]cty.Value{cty.StringVal("x")})
	assert.ErrorContains(t, err, "expected a number")
}

func TestMean(t *testing.T) {
	v, err := aggregate.Mean(nums(2, 4, 6))
	require.NoError(t, err)
	assertNum(t, 4, v)

	v, err = aggregate.Mean(withNull(nums(2, 4)))
	require.NoError(t, err)
	assertNum(t, 3, v)

	// All-null input has no mean.
	v, err = aggregate.Mean([]cty.Value{cty.NullVal(cty.Number)})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestMinMax(t *testing.T) {
	v, err := aggregate.Min(nums(5, -2, 9))
	require.NoError(t, err)
	assertNum(t, -2, v)

	v, err = aggregate.Max(nums(5, -2, 9))
	require.NoError(t, err)
	assertNum(t, 9, v)

	v, err = aggregate.Min(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCount(t *testing.T) {
	v, err := aggregate.Count(withNull(nums(1, 2, 3)))
	require.NoError(t, err)
	assertNum(t, 3, v)
}

func TestCountDistinct(t *testing.T) {
	values := []cty.Value{
		cty.StringVal("a"),
		cty.StringVal("b"),
		cty.StringVal("a"),
		cty.NullVal(cty.String),
	}
	v, err := aggregate.CountDistinct(values)
	require.NoError(t, err)
	assertNum(t, 2, v)
}

func TestFirst(t *testing.T) {
	v, err := aggregate.First(withNull(nums(7, 8)))
	require.NoError(t, err)
	assertNum(t, 7, v)

	v, err = aggregate.First(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
