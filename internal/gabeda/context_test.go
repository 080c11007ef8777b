package gabeda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/dataset"
	"github.com/gabeda-io/gabeda/internal/gabeda"
)

func sampleData(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.FromColumns([]dataset.Column{
		{Name: "x", Values: []cty.Value{dataset.Num(1), dataset.Num(2)}},
	})
	require.NoError(t, err)
	return d
}

func sampleOutput(t *testing.T, input string) *gabeda.ModelOutput {
	t.Helper()
	return &gabeda.ModelOutput{
		Filters:          sampleData(t),
		Attrs:            sampleData(t),
		InputDatasetName: input,
		FilterColumns:    []string{"x"},
	}
}

func TestContext_Datasets(t *testing.T) {
	c := gabeda.New()
	assert.NotEmpty(t, c.RunID())

	require.NoError(t, c.SetDataset("sales", sampleData(t)))
	require.NoError(t, c.SetDataset("rates", sampleData(t)))

	d, err := c.Dataset("sales")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	assert.Equal(t, []string{"sales", "rates"}, c.ListDatasets())

	_, err = c.Dataset("ghost")
	var unknown *gabeda.UnknownDatasetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Name)
	assert.Equal(t, []string{"sales", "rates"}, unknown.Available)
}

func TestContext_SetDataset_Validation(t *testing.T) {
	c := gabeda.New()
	assert.ErrorContains(t, c.SetDataset("", sampleData(t)), "must not be empty")
	assert.ErrorContains(t, c.SetDataset("x", nil), "must not be nil")
}

func TestContext_ModelOutput(t *testing.T) {
	c := gabeda.New()
	require.NoError(t, c.SetDataset("sales", sampleData(t)))
	require.NoError(t, c.SetModelOutput("summary", sampleOutput(t, "sales")))

	out, err := c.ModelOutput("summary")
	require.NoError(t, err)
	assert.Equal(t, "sales", out.InputDatasetName)

	// Derived datasets are registered for chaining.
	_, err = c.Dataset("summary_filters")
	require.NoError(t, err)
	_, err = c.Dataset("summary_attrs")
	require.NoError(t, err)

	filters, err := c.ModelFilters("summary")
	require.NoError(t, err)
	assert.Same(t, out.Filters, filters)

	attrs, err := c.ModelAttrs("summary")
	require.NoError(t, err)
	assert.Same(t, out.Attrs, attrs)

	assert.Equal(t, []string{"summary"}, c.ListModels())
}

func TestContext_ModelInputLineage(t *testing.T) {
	c := gabeda.New()
	raw := sampleData(t)
	require.NoError(t, c.SetDataset("sales", raw))
	require.NoError(t, c.SetModelOutput("summary", sampleOutput(t, "sales")))

	// Both spellings resolve to the raw dataset the model consumed.
	viaMethod, err := c.ModelInput("summary")
	require.NoError(t, err)
	assert.Same(t, raw, viaMethod)

	viaName, err := c.Dataset("summary_input")
	require.NoError(t, err)
	assert.Same(t, raw, viaName)
}

func TestContext_UnknownModel(t *testing.T) {
	c := gabeda.New()
	var unknown *gabeda.UnknownModelError

	_, err := c.ModelOutput("ghost")
	require.ErrorAs(t, err, &unknown)

	_, err = c.ModelInput("ghost")
	require.ErrorAs(t, err, &unknown)
}

func TestContext_RerunReplacesOutput(t *testing.T) {
	c := gabeda.New()
	require.NoError(t, c.SetDataset("sales", sampleData(t)))
	require.NoError(t, c.SetModelOutput("summary", sampleOutput(t, "sales")))

	second := sampleOutput(t, "sales")
	require.NoError(t, c.SetModelOutput("summary", second))

	out, err := c.ModelOutput("summary")
	require.NoError(t, err)
	assert.Same(t, second, out)
	assert.Equal(t, []string{"summary"}, c.ListModels(), "re-runs appear once")
}

func TestContext_History(t *testing.T) {
	c := gabeda.New()
	require.NoError(t, c.SetDataset("sales", sampleData(t)))
	require.NoError(t, c.SetModelOutput("summary", sampleOutput(t, "sales")))

	history := c.History()
	require.NotEmpty(t, history)
	assert.Equal(t, "set_dataset", history[0].Action)
	assert.Equal(t, "sales", history[0].Name)
	assert.Equal(t, "model_executed", history[len(history)-1].Action)

	summary := c.Summary()
	assert.Contains(t, summary, "sales")
	assert.Contains(t, summary, "summary")
}
