package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/feature"
	"github.com/gabeda-io/gabeda/internal/plan"
)

func noop(args []cty.Value) (cty.Value, error) {
	return cty.NilVal, nil
}

// salesStore registers the canonical four-case feature set: a row-level
// doubling, a per-group sum, a row-level share against the group sum, and a
// group-level share against the grand total.
func salesStore(t *testing.T) *feature.Store {
	t.Helper()
	s := feature.NewStore()
	defs := []*feature.Definition{
		{Name: "price_doubled", Dependencies: []string{"price"}, Fn: noop},
		{Name: "total_price", Dependencies: []string{"price"}, RequiresGroupKey: true, Fn: noop},
		{Name: "price_share", Dependencies: []string{"price", "total_price"}, Fn: noop},
		{Name: "share_percent", Kind: feature.KindAttribute, Dependencies: []string{"total_price"}, Fn: noop},
	}
	for _, def := range defs {
		require.NoError(t, s.Register(def))
	}
	return s
}

func salesRequest(outputs ...string) plan.Request {
	return plan.Request{
		Outputs: outputs,
		Columns: []string{"product", "price"},
		GroupBy: []string{"product"},
	}
}

func stepNames(p *plan.Plan) []string {
	var names []string
	for _, s := range p.Steps {
		names = append(names, s.Def.Name)
	}
	return names
}

func TestResolve_CaseAssignment(t *testing.T) {
	r := plan.NewResolver(salesStore(t))

	p, err := r.Resolve(context.Background(), salesRequest(
		"price_doubled", "total_price", "price_share", "share_percent",
	))
	require.NoError(t, err)
	require.Len(t, p.Steps, 4)

	doubled := p.Step("price_doubled")
	require.NotNil(t, doubled)
	assert.Equal(t, plan.CaseStandardFilter, doubled.Case)
	assert.True(t, doubled.ReadsInput)
	assert.False(t, doubled.ReadsAttrs)
	assert.False(t, doubled.GroupBy)

	total := p.Step("total_price")
	require.NotNil(t, total)
	assert.Equal(t, plan.CaseAggregation, total.Case)
	assert.True(t, total.ReadsInput)
	assert.True(t, total.GroupBy)

	share := p.Step("price_share")
	require.NotNil(t, share)
	assert.Equal(t, plan.CaseFilterWithAttributes, share.Case)
	assert.True(t, share.ReadsInput)
	assert.True(t, share.ReadsAttrs)

	percent := p.Step("share_percent")
	require.NotNil(t, percent)
	assert.Equal(t, plan.CaseComposition, percent.Case)
	assert.False(t, percent.ReadsInput, "composition never touches raw input")
	assert.True(t, percent.ReadsAttrs)

	assert.Equal(t, []string{"price"}, p.InputColumns)
}

func TestResolve_DependenciesPrecedeDependents(t *testing.T) {
	r := plan.NewResolver(salesStore(t))

	// Requesting only the leaves still pulls in and orders the full closure.
	p, err := r.Resolve(context.Background(), salesRequest("price_share", "share_percent"))
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, name := range stepNames(p) {
		pos[name] = i
	}
	require.Contains(t, pos, "total_price")
	assert.Less(t, pos["total_price"], pos["price_share"])
	assert.Less(t, pos["total_price"], pos["share_percent"])
}

func TestResolve_Deterministic(t *testing.T) {
	r := plan.NewResolver(salesStore(t))
	req := salesRequest("share_percent", "price_share", "price_doubled")

	first, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.Resolve(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, stepNames(first), stepNames(again))
	}
}

func TestResolve_RawColumnOutputPassesThrough(t *testing.T) {
	r := plan.NewResolver(salesStore(t))

	p, err := r.Resolve(context.Background(), salesRequest("price", "price_doubled"))
	require.NoError(t, err)
	assert.Equal(t, []string{"price_doubled"}, stepNames(p))
	assert.Equal(t, []string{"price"}, p.InputColumns)
}

func TestResolve_UnknownOutput(t *testing.T) {
	r := plan.NewResolver(salesStore(t))

	_, err := r.Resolve(context.Background(), salesRequest("no_such_thing"))
	var unknown *plan.UnknownDependencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_thing", unknown.Dependency)
}

func TestResolve_UnknownDependency(t *testing.T) {
	s := feature.NewStore()
	require.NoError(t, s.Register(&feature.Definition{
		Name: "broken", Dependencies: []string{"ghost_column"}, Fn: noop,
	}))
	r := plan.NewResolver(s)

	_, err := r.Resolve(context.Background(), plan.Request{
		Outputs: []string{"broken"},
		Columns: []string{"price"},
	})
	var unknown *plan.UnknownDependencyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "broken", unknown.Feature)
	assert.Equal(t, "ghost_column", unknown.Dependency)
}

func TestResolve_CycleDetected(t *testing.T) {
	s := feature.NewStore()
	require.NoError(t, s.Register(&feature.Definition{Name: "a", Dependencies: []string{"c"}, Fn: noop}))
	require.NoError(t, s.Register(&feature.Definition{Name: "b", Dependencies: []string{"a"}, Fn: noop}))
	require.NoError(t, s.Register(&feature.Definition{Name: "c", Dependencies: []string{"b"}, Fn: noop}))
	r := plan.NewResolver(s)

	_, err := r.Resolve(context.Background(), plan.Request{
		Outputs: []string{"a"},
		Columns: []string{"price"},
	})
	var cycle *plan.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycle.Members)
}

func TestResolve_SelfCycle(t *testing.T) {
	s := feature.NewStore()
	require.NoError(t, s.Register(&feature.Definition{Name: "a", Dependencies: []string{"a"}, Fn: noop}))
	r := plan.NewResolver(s)

	_, err := r.Resolve(context.Background(), plan.Request{Outputs: []string{"a"}})
	var cycle *plan.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a"}, cycle.Members)
}

func TestResolve_EnrichmentMode(t *testing.T) {
	t.Run("aggregating features are skipped", func(t *testing.T) {
		r := plan.NewResolver(salesStore(t))

		p, err := r.Resolve(context.Background(), plan.Request{
			Outputs: []string{"price_doubled", "total_price"},
			Columns: []string{"product", "price"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"price_doubled"}, stepNames(p))
	})

	t.Run("dependents of skipped features fail fast", func(t *testing.T) {
		r := plan.NewResolver(salesStore(t))

		_, err := r.Resolve(context.Background(), plan.Request{
			Outputs: []string{"price_share"},
			Columns: []string{"product", "price"},
		})
		var unknown *plan.UnknownDependencyError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "price_share", unknown.Feature)
		assert.Equal(t, "total_price", unknown.Dependency)
		assert.Contains(t, unknown.Detail, "enrichment mode")
	})
}

func TestResolve_AttributeReadingRawWithoutGroupKeyIsAmbiguous(t *testing.T) {
	s := feature.NewStore()
	require.NoError(t, s.Register(&feature.Definition{
		Name:         "confused",
		Kind:         feature.KindAttribute,
		Dependencies: []string{"price"},
		Fn:           noop,
	}))
	r := plan.NewResolver(s)

	_, err := r.Resolve(context.Background(), plan.Request{
		Outputs: []string{"confused"},
		Columns: []string{"price"},
		GroupBy: []string{"product"},
	})
	var amb *feature.AmbiguityError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "confused", amb.Name)
}

func TestResolve_GroupKeyDependencyIsProvided(t *testing.T) {
	s := feature.NewStore()
	require.NoError(t, s.Register(&feature.Definition{
		Name:             "label",
		Dependencies:     []string{"product", "price"},
		RequiresGroupKey: true,
		Fn:               noop,
	}))
	r := plan.NewResolver(s)

	p, err := r.Resolve(context.Background(), plan.Request{
		Outputs: []string{"label"},
		Columns: []string{"product", "price"},
		GroupBy: []string{"product"},
	})
	require.NoError(t, err)
	// The group key is supplied by grouping, not recorded as a read column.
	assert.Equal(t, []string{"price"}, p.InputColumns)
}

func TestResolve_ExternalColumnCountsAsAttrInput(t *testing.T) {
	s := feature.NewStore()
	require.NoError(t, s.Register(&feature.Definition{
		Name:         "adjusted",
		Dependencies: []string{"price", "fx_rate"},
		Fn:           noop,
	}))
	r := plan.NewResolver(s)

	p, err := r.Resolve(context.Background(), plan.Request{
		Outputs:         []string{"adjusted"},
		Columns:         []string{"product", "price"},
		ExternalColumns: []string{"fx_rate"},
		GroupBy:         []string{"product"},
	})
	require.NoError(t, err)

	step := p.Step("adjusted")
	require.NotNil(t, step)
	assert.Equal(t, plan.CaseFilterWithAttributes, step.Case)
	assert.ElementsMatch(t, []string{"price", "fx_rate"}, p.InputColumns)
}
