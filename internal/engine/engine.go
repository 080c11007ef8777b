package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/dataset"
	"github.com/gabeda-io/gabeda/internal/gabeda"
	"github.com/gabeda-io/gabeda/internal/plan"
)

// Config carries the execution-time parameters of one run.
type Config struct {
	// GroupBy are the grouping key columns. Empty means enrichment mode.
	GroupBy []string
	// ExternalColumns are columns merged in from other datasets. They are
	// row-aligned but hold group-level values, so aggregating features read
	// them as one scalar per group.
	ExternalColumns []string
}

// runState is the arena of intermediate results during one run. Row-level
// columns (raw input, external, computed filters) and group-level columns
// (computed attributes) live in separate namespaces; argument sourcing
// checks attributes first, mirroring the flag rules fixed at planning time.
type runState struct {
	rows        int
	rowCols     map[string][]cty.Value
	rowOrder    []string
	filterNames []string
	attrCols    map[string][]cty.Value
	attrNames   []string
	external    map[string]bool
}

// Execute runs a plan against a dataset in a single deterministic pass,
// dispatching every step to one of the four execution cases. The input is
// never mutated; results accumulate in fresh output tables. Execution is
// all-or-nothing: the first failing step aborts the run and nothing is
// returned.
func Execute(ctx context.Context, p *plan.Plan, data *dataset.Dataset, cfg Config) (*gabeda.ModelOutput, error) {
	logger := ctxlog.FromContext(ctx)

	var groups *grouping
	if len(cfg.GroupBy) > 0 {
		var err error
		groups, err = buildGrouping(data, cfg.GroupBy)
		if err != nil {
			return nil, err
		}
		logger.Debug("Grouping built.", "groups", groups.size(), "keys", cfg.GroupBy)
	} else {
		logger.Info("No group key declared, running in enrichment mode.")
	}

	state := &runState{
		rows:     data.Len(),
		rowCols:  make(map[string][]cty.Value),
		rowOrder: data.Columns(),
		attrCols: make(map[string][]cty.Value),
		external: make(map[string]bool, len(cfg.ExternalColumns)),
	}
	for _, name := range state.rowOrder {
		vals, _ := data.Column(name)
		state.rowCols[name] = vals
	}
	for _, name := range cfg.ExternalColumns {
		state.external[name] = true
	}

	for _, step := range p.Steps {
		// The engine has no internal suspension points; cancellation is
		// honored between steps only.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("execution aborted: %w", err)
		}
		logger.Debug("Dispatching step.",
			"feature", step.Def.Name,
			"case", step.Case.String(),
			"reads_input", step.ReadsInput,
			"reads_attrs", step.ReadsAttrs)

		var err error
		switch step.Case {
		case plan.CaseStandardFilter, plan.CaseFilterWithAttributes:
			// A filter whose column already exists in the input (a prior
			// model's output fed back in) is taken as-is, not recomputed.
			if state.rowCols[step.Def.Name] != nil {
				logger.Debug("Feature already present in the input, skipping.", "feature", step.Def.Name)
				continue
			}
			err = computeFilter(state, step, groups)
		case plan.CaseAggregation:
			err = computeAggregation(state, step, groups)
		case plan.CaseComposition:
			err = computeComposition(state, step, groups)
		default:
			err = fmt.Errorf("internal: step %q has no execution case", step.Def.Name)
		}
		if err != nil {
			logger.Error("Step failed, aborting run.", "feature", step.Def.Name, "error", err)
			return nil, err
		}
	}

	return assembleOutput(state, groups, cfg), nil
}

// computeFilter handles Cases 1 and 2: one output value per input row, in
// input row order. Case 2 arguments naming a prior attribute receive the
// value of the row's own group.
func computeFilter(state *runState, step *plan.Step, groups *grouping) error {
	deps := step.Def.Dependencies
	rows := state.rows
	out := make([]cty.Value, rows)
	args := make([]cty.Value, len(deps))
	for i := 0; i < rows; i++ {
		for j, dep := range deps {
			switch {
			case state.attrCols[dep] != nil:
				if groups == nil {
					return missingPrior(step.Def.Name, dep)
				}
				args[j] = state.attrCols[dep][groups.rowGroup[i]]
			case state.rowCols[dep] != nil:
				args[j] = state.rowCols[dep][i]
			default:
				return missingPrior(step.Def.Name, dep)
			}
		}
		v, err := step.Def.Fn(args)
		if err != nil {
			cerr := &ComputationError{Feature: step.Def.Name, Case: step.Case, Row: i, Err: err}
			if groups != nil {
				cerr.GroupKey = groups.label(groups.rowGroup[i])
			}
			return cerr
		}
		out[i] = v
	}
	state.rowCols[step.Def.Name] = out
	state.rowOrder = append(state.rowOrder, step.Def.Name)
	state.filterNames = append(state.filterNames, step.Def.Name)
	return nil
}

// computeAggregation handles Case 3: reduce each group to one scalar.
// Row-level arguments arrive as a tuple of the group's values; prior
// attributes and external columns arrive as the group's scalar.
func computeAggregation(state *runState, step *plan.Step, groups *grouping) error {
	deps := step.Def.Dependencies
	out := make([]cty.Value, groups.size())
	args := make([]cty.Value, len(deps))
	for g := 0; g < groups.size(); g++ {
		for j, dep := range deps {
			switch {
			case state.attrCols[dep] != nil:
				args[j] = state.attrCols[dep][g]
			case state.external[dep]:
				args[j] = state.rowCols[dep][groups.rows[g][0]]
			case state.rowCols[dep] != nil:
				args[j] = gather(state.rowCols[dep], groups.rows[g])
			default:
				return missingPrior(step.Def.Name, dep)
			}
		}
		v, err := step.Def.Fn(args)
		if err != nil {
			return &ComputationError{
				Feature:  step.Def.Name,
				Case:     step.Case,
				GroupKey: groups.label(g),
				Row:      -1,
				Err:      err,
			}
		}
		out[g] = v
	}
	state.attrCols[step.Def.Name] = out
	state.attrNames = append(state.attrNames, step.Def.Name)
	return nil
}

// computeComposition handles Case 4: a pure function of prior group-level
// columns, invoked once. Each argument is the full column (one element per
// group); the result is either a matching column or a scalar broadcast to
// every group. The raw dataset is never touched. External columns are
// group-level values stored row-aligned, so they collapse to one value per
// group here, same as in the aggregation path.
func computeComposition(state *runState, step *plan.Step, groups *grouping) error {
	deps := step.Def.Dependencies
	args := make([]cty.Value, len(deps))
	for j, dep := range deps {
		switch {
		case state.attrCols[dep] != nil:
			args[j] = cty.TupleVal(state.attrCols[dep])
		case state.external[dep]:
			col := make([]cty.Value, groups.size())
			for g := range col {
				col[g] = state.rowCols[dep][groups.rows[g][0]]
			}
			args[j] = cty.TupleVal(col)
		default:
			return missingPrior(step.Def.Name, dep)
		}
	}
	v, err := step.Def.Fn(args)
	if err != nil {
		return &ComputationError{Feature: step.Def.Name, Case: step.Case, Row: -1, Err: err}
	}

	out := make([]cty.Value, groups.size())
	if v.Type().IsTupleType() || v.Type().IsListType() {
		elems := v.AsValueSlice()
		if len(elems) != groups.size() {
			return &ComputationError{
				Feature: step.Def.Name,
				Case:    step.Case,
				Row:     -1,
				Err:     fmt.Errorf("returned %d values for %d groups", len(elems), groups.size()),
			}
		}
		copy(out, elems)
	} else {
		for g := range out {
			out[g] = v
		}
	}
	state.attrCols[step.Def.Name] = out
	state.attrNames = append(state.attrNames, step.Def.Name)
	return nil
}

// assembleOutput builds the two result tables: filters in original row
// order, attrs with one row per group in first-seen key order.
func assembleOutput(state *runState, groups *grouping, cfg Config) *gabeda.ModelOutput {
	filters := dataset.New()
	for _, name := range state.rowOrder {
		// Names are unique and lengths align; AddColumn cannot fail.
		_ = filters.AddColumn(name, state.rowCols[name])
	}

	attrs := dataset.New()
	if groups != nil {
		for i, key := range groups.keys {
			keyCol := make([]cty.Value, groups.size())
			for g := 0; g < groups.size(); g++ {
				keyCol[g] = groups.keyVals[g][i]
			}
			_ = attrs.AddColumn(key, keyCol)
		}
		for _, name := range state.attrNames {
			_ = attrs.AddColumn(name, state.attrCols[name])
		}
	}

	return &gabeda.ModelOutput{
		Filters:       filters,
		Attrs:         attrs,
		FilterColumns: append([]string(nil), state.filterNames...),
		AttrColumns:   append([]string(nil), state.attrNames...),
		ComputedAt:    time.Now(),
	}
}

// gather picks the values of a column at the given row indices as a tuple.
func gather(col []cty.Value, rows []int) cty.Value {
	if len(rows) == 0 {
		return cty.EmptyTupleVal
	}
	vals := make([]cty.Value, len(rows))
	for i, row := range rows {
		vals[i] = col[row]
	}
	return cty.TupleVal(vals)
}

// missingPrior reports a step whose required prior result is absent from
// the running tables. The resolver guarantees ordering, so this is a
// planning bug and fatal, never recoverable.
func missingPrior(feat, dep string) error {
	return fmt.Errorf("internal: feature %q requires %q, which is not present in the running tables", feat, dep)
}
