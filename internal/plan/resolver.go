package plan

import (
	"context"
	"fmt"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/feature"
)

// Request describes one planning run: which features to produce and what the
// surrounding world looks like.
type Request struct {
	// Outputs are the features the caller wants computed. Raw column names
	// are accepted and simply recorded as input columns.
	Outputs []string
	// Columns are the raw input dataset's column names.
	Columns []string
	// ExternalColumns are columns joined in from other datasets before
	// execution. They resolve like raw columns but count as prior aggregate
	// inputs for flag purposes.
	ExternalColumns []string
	// GroupBy are the grouping key columns. Empty means enrichment mode:
	// every feature runs row-level and aggregating features are skipped.
	GroupBy []string
}

// Resolver builds dependency graphs from feature definitions and turns them
// into execution plans.
type Resolver struct {
	store    *feature.Store
	detector feature.TypeDetector
}

// NewResolver creates a resolver over a feature store.
func NewResolver(store *feature.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve is the combined entry point: build the graph, order it, and
// assign execution flags and cases. All planning errors surface here,
// before any row is processed.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Plan, error) {
	graph, inputCols, err := r.BuildGraph(ctx, req)
	if err != nil {
		return nil, err
	}
	order, err := r.ResolveOrder(graph)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, req, order, inputCols)
}

// BuildGraph walks the requested outputs depth-first, pulling definitions
// from the store, and returns the dependency graph plus the raw columns the
// features read. A dependency that names neither a raw column, an external
// column, a group key, nor a registered feature fails with
// UnknownDependencyError.
func (r *Resolver) BuildGraph(ctx context.Context, req Request) (*Graph, []string, error) {
	logger := ctxlog.FromContext(ctx)
	graph := newGraph()

	available := toSet(req.Columns)
	external := toSet(req.ExternalColumns)
	groupKeys := toSet(req.GroupBy)

	var inputCols []string
	seenInput := make(map[string]bool)
	recordInput := func(name string) {
		if !seenInput[name] {
			seenInput[name] = true
			inputCols = append(inputCols, name)
		}
	}

	var walk func(name string) error
	walk = func(name string) error {
		if _, done := graph.nodes[name]; done {
			return nil
		}
		def, err := r.store.Get(name)
		if err != nil {
			return err
		}
		graph.addNode(name)
		for _, dep := range def.Dependencies {
			switch {
			case groupKeys[dep]:
				// Group key columns are provided by the grouping operation.
			case r.store.Has(dep):
				if err := walk(dep); err != nil {
					return err
				}
				graph.addEdge(name, dep)
			case available[dep] || external[dep]:
				recordInput(dep)
			default:
				return &UnknownDependencyError{Feature: name, Dependency: dep}
			}
		}
		return nil
	}

	for _, out := range req.Outputs {
		// Outputs that are plain raw columns pass through as inputs.
		if !r.store.Has(out) {
			if available[out] || external[out] || groupKeys[out] {
				recordInput(out)
				continue
			}
			return nil, nil, &UnknownDependencyError{Dependency: out}
		}
		if err := walk(out); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("Dependency graph built.", "features", len(graph.order), "input_columns", len(inputCols))
	return graph, inputCols, nil
}

// ResolveOrder produces a topological order via depth-first post-order
// traversal: a node's dependencies are fully resolved before the node itself
// is appended. Nodes still in progress that are reached again indicate a
// cycle, reported with the cycle's member names.
func (r *Resolver) ResolveOrder(g *Graph) ([]string, error) {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var stack []string
	var order []string

	var visit func(id string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			return &CycleError{Members: cycleMembers(stack, id)}
		}
		visiting[id] = true
		stack = append(stack, id)
		for _, dep := range g.nodes[id].deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(visiting, id)
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// assemble computes flags and cases for the ordered features. In enrichment
// mode (no group key) aggregating features are dropped with a warning, and
// anything still depending on them fails fast.
func (r *Resolver) assemble(ctx context.Context, req Request, order []string, inputCols []string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	enrichment := len(req.GroupBy) == 0

	rowLevel := toSet(req.Columns)
	for _, g := range req.GroupBy {
		rowLevel[g] = true
	}
	external := toSet(req.ExternalColumns)
	attrLevel := make(map[string]bool)
	skipped := make(map[string]bool)

	p := &Plan{InputColumns: inputCols, GroupBy: req.GroupBy}
	for _, name := range order {
		def, err := r.store.Get(name)
		if err != nil {
			return nil, err
		}

		step := &Step{Def: def, GroupBy: r.detector.RequiresAggregation(def)}
		for _, dep := range def.Dependencies {
			switch {
			case skipped[dep]:
				return nil, &UnknownDependencyError{
					Feature:    name,
					Dependency: dep,
					Detail:     "depends on an aggregating feature skipped in enrichment mode",
				}
			case attrLevel[dep] || external[dep]:
				step.ReadsAttrs = true
			case rowLevel[dep]:
				step.ReadsInput = true
			}
		}

		kind, err := r.detector.Classify(def)
		if err != nil {
			return nil, err
		}
		switch kind {
		case feature.KindFilter:
			if step.ReadsAttrs {
				step.Case = CaseFilterWithAttributes
			} else {
				step.Case = CaseStandardFilter
			}
			rowLevel[name] = true
		case feature.KindAttribute:
			if enrichment {
				logger.Warn("Skipping attribute feature: no group key in enrichment mode.", "feature", name)
				skipped[name] = true
				continue
			}
			if step.GroupBy {
				step.Case = CaseAggregation
			} else {
				if step.ReadsInput {
					return nil, &feature.AmbiguityError{
						Name:   name,
						Reason: "reads raw columns without a group key; declare requires_group_key or drop the raw inputs",
					}
				}
				step.Case = CaseComposition
			}
			attrLevel[name] = true
		default:
			return nil, fmt.Errorf("internal: feature %q classified as %s", name, kind)
		}

		p.Steps = append(p.Steps, step)
	}

	logger.Debug("Execution plan assembled.", "steps", len(p.Steps), "enrichment", enrichment)
	return p, nil
}

func cycleMembers(stack []string, start string) []string {
	for i, id := range stack {
		if id == start {
			members := make([]string, len(stack)-i)
			copy(members, stack[i:])
			return members
		}
	}
	return []string{start}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
