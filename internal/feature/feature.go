package feature

import "github.com/zclconf/go-cty/cty"

// Kind classifies what a feature produces: one value per input row (a
// filter) or one value per group (an attribute).
type Kind int

const (
	// KindUnspecified lets the type detector infer the kind from the rest of
	// the descriptor.
	KindUnspecified Kind = iota
	// KindFilter features produce one value per input row.
	KindFilter
	// KindAttribute features produce one value per group.
	KindAttribute
)

// String implements fmt.Stringer for Kind.
func (k Kind) String() string {
	switch k {
	case KindFilter:
		return "filter"
	case KindAttribute:
		return "attribute"
	default:
		return "unspecified"
	}
}

// Func is the calling convention shared by all features. Arguments arrive in
// the order of the definition's Dependencies list. What each argument holds
// depends on the execution case: a scalar cell for row-level dispatch, a
// scalar group result for prior attributes, or a tuple of values when an
// aggregating feature reads a whole column.
type Func func(args []cty.Value) (cty.Value, error)

// Definition is the declared capability descriptor attached to a feature at
// registration time. Dependencies name raw columns or other features; the
// planner infers everything else from this descriptor, never from the
// callable itself. Definitions are immutable once registered.
type Definition struct {
	Name             string
	Kind             Kind
	Dependencies     []string
	RequiresGroupKey bool
	Fn               Func
}
