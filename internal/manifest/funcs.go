package manifest

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/gabeda-io/gabeda/internal/aggregate"
)

// EvalFunctions returns the function table available to manifest
// expressions: the sequence reducers plus a small set of scalar helpers.
func EvalFunctions() map[string]function.Function {
	return map[string]function.Function{
		"sum":      seqFunc(aggregate.Sum),
		"mean":     seqFunc(aggregate.Mean),
		"min":      seqFunc(aggregate.Min),
		"max":      seqFunc(aggregate.Max),
		"count":    seqFunc(aggregate.Count),
		"distinct": seqFunc(aggregate.CountDistinct),
		"first":    seqFunc(aggregate.First),

		"abs":      stdlib.AbsoluteFunc,
		"ceil":     stdlib.CeilFunc,
		"floor":    stdlib.FloorFunc,
		"length":   stdlib.LengthFunc,
		"coalesce": stdlib.CoalesceFunc,
		"format":   stdlib.FormatFunc,
		"lower":    stdlib.LowerFunc,
		"upper":    stdlib.UpperFunc,
	}
}

// seqFunc adapts a reducer over value slices into an HCL-callable function.
// A scalar argument is treated as a one-element sequence so the same
// function works in both per-group and whole-column positions.
func seqFunc(impl func([]cty.Value) (cty.Value, error)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{
			Name:             "values",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		}},
		Type: func(args []cty.Value) (cty.Type, error) {
			return cty.DynamicPseudoType, nil
		},
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			seq := args[0]
			if seq.IsNull() {
				return impl(nil)
			}
			ty := seq.Type()
			if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
				return impl(seq.AsValueSlice())
			}
			return impl([]cty.Value{seq})
		},
	})
}
