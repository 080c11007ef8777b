package plan

import "github.com/gabeda-io/gabeda/internal/feature"

// Case identifies which of the four execution behaviors a step dispatches to.
type Case int

const (
	// CaseStandardFilter applies a row-wise function of raw input only.
	CaseStandardFilter Case = iota + 1
	// CaseFilterWithAttributes broadcasts prior group results back onto rows
	// before computing row-wise.
	CaseFilterWithAttributes
	// CaseAggregation groups rows by key and reduces each group to a scalar.
	CaseAggregation
	// CaseComposition is a pure function of previously computed attributes.
	CaseComposition
)

// String implements fmt.Stringer for Case.
func (c Case) String() string {
	switch c {
	case CaseStandardFilter:
		return "standard filter"
	case CaseFilterWithAttributes:
		return "filter using attributes"
	case CaseAggregation:
		return "attribute with aggregation"
	case CaseComposition:
		return "attribute composition"
	default:
		return "unknown"
	}
}

// Step is one planned feature computation. Its flags are fixed at planning
// time so execution dispatch is a pure lookup:
//
//	ReadsInput - the feature reads raw or row-level columns (in flag)
//	ReadsAttrs - the feature reads prior group results (out flag)
//	GroupBy    - the feature reduces grouped rows (groupby flag)
type Step struct {
	Def        *feature.Definition
	Case       Case
	ReadsInput bool
	ReadsAttrs bool
	GroupBy    bool
}

// Plan is a topologically ordered execution sequence. For every dependency
// edge, the dependency's step precedes its dependent's step. InputColumns
// lists the raw columns the plan reads, in discovery order.
type Plan struct {
	Steps        []*Step
	InputColumns []string
	GroupBy      []string
}

// Step returns the planned step for a feature name, or nil.
func (p *Plan) Step(name string) *Step {
	for _, s := range p.Steps {
		if s.Def.Name == name {
			return s
		}
	}
	return nil
}
