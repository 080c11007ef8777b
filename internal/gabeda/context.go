package gabeda

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gabeda-io/gabeda/internal/dataset"
)

// modelInputSuffix lets callers resolve the raw dataset behind a model via
// the "<model>_input" dataset name, following the recorded lineage.
const modelInputSuffix = "_input"

// ModelOutput is the immutable result of one successful model run: the
// row-aligned filters table, the group-aligned attrs table, and the lineage
// link back to the raw dataset that fed them. Re-running a model replaces
// the whole record.
type ModelOutput struct {
	Filters          *dataset.Dataset
	Attrs            *dataset.Dataset
	InputDatasetName string
	FilterColumns    []string
	AttrColumns      []string
	ComputedAt       time.Time
}

// HistoryEntry is one line of the context's execution log.
type HistoryEntry struct {
	Action  string
	Name    string
	Rows    int
	Columns int
	At      time.Time
}

// Context is the session-scoped store of named datasets and model outputs.
// It enables reuse (several models over the same working set) and lineage
// tracking. Setters fully replace existing entries; there is no partial
// merge. The maps are mutex-guarded so independent runs may share a context
// on disjoint keys, but serializing writes to the same key is the caller's
// responsibility.
type Context struct {
	mu       sync.RWMutex
	runID    string
	created  time.Time
	datasets map[string]*dataset.Dataset
	models   map[string]*ModelOutput
	history  []HistoryEntry
}

// New creates an empty session context with a fresh run ID.
func New() *Context {
	c := &Context{
		runID:    uuid.NewString(),
		created:  time.Now(),
		datasets: make(map[string]*dataset.Dataset),
		models:   make(map[string]*ModelOutput),
	}
	slog.Debug("Session context created.", "run_id", c.runID)
	return c
}

// RunID returns the unique identifier of this session.
func (c *Context) RunID() string {
	return c.runID
}

// SetDataset stores a named dataset, replacing any previous entry.
func (c *Context) SetDataset(name string, d *dataset.Dataset) error {
	if name == "" {
		return fmt.Errorf("dataset name must not be empty")
	}
	if d == nil {
		return fmt.Errorf("dataset %q must not be nil", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets[name] = d
	c.log("set_dataset", name, d)
	return nil
}

// Dataset retrieves a named dataset. The "<model>_input" form resolves
// through the model's recorded lineage to the raw dataset that fed it.
func (c *Context) Dataset(name string) (*dataset.Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.datasetLocked(name)
}

func (c *Context) datasetLocked(name string) (*dataset.Dataset, error) {
	if model, ok := strings.CutSuffix(name, modelInputSuffix); ok {
		if out, exists := c.models[model]; exists {
			if d, found := c.datasets[out.InputDatasetName]; found {
				return d, nil
			}
			return nil, &UnknownDatasetError{Name: out.InputDatasetName, Available: c.datasetNames()}
		}
	}
	if d, ok := c.datasets[name]; ok {
		return d, nil
	}
	return nil, &UnknownDatasetError{Name: name, Available: c.datasetNames()}
}

// ListDatasets returns all dataset names in the order they were first
// stored.
func (c *Context) ListDatasets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.datasetNames()
}

// SetModelOutput commits a model's result, replacing any previous output
// under that name, and registers the derived "<model>_filters" and
// "<model>_attrs" datasets so later models can chain off them.
func (c *Context) SetModelOutput(model string, out *ModelOutput) error {
	if model == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if out == nil {
		return fmt.Errorf("model output for %q must not be nil", model)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.models[model] = out
	if out.Filters != nil {
		c.datasets[model+"_filters"] = out.Filters
		c.log("set_dataset", model+"_filters", out.Filters)
	}
	if out.Attrs != nil {
		c.datasets[model+"_attrs"] = out.Attrs
		c.log("set_dataset", model+"_attrs", out.Attrs)
	}
	c.history = append(c.history, HistoryEntry{
		Action: "model_executed",
		Name:   model,
		Rows:   rowsOf(out.Filters),
		At:     time.Now(),
	})
	slog.Info("Model output stored.",
		"model", model,
		"input", out.InputDatasetName,
		"filter_columns", len(out.FilterColumns),
		"attr_columns", len(out.AttrColumns))
	return nil
}

// ModelOutput retrieves a model's committed output.
func (c *Context) ModelOutput(model string) (*ModelOutput, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, ok := c.models[model]
	if !ok {
		return nil, &UnknownModelError{Name: model}
	}
	return out, nil
}

// ModelFilters returns the row-level table of a committed model.
func (c *Context) ModelFilters(model string) (*dataset.Dataset, error) {
	out, err := c.ModelOutput(model)
	if err != nil {
		return nil, err
	}
	return out.Filters, nil
}

// ModelAttrs returns the group-level table of a committed model.
func (c *Context) ModelAttrs(model string) (*dataset.Dataset, error) {
	out, err := c.ModelOutput(model)
	if err != nil {
		return nil, err
	}
	return out.Attrs, nil
}

// ModelInput returns the raw dataset a committed model ran against.
func (c *Context) ModelInput(model string) (*dataset.Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.models[model]; !ok {
		return nil, &UnknownModelError{Name: model}
	}
	return c.datasetLocked(model + modelInputSuffix)
}

// ListModels returns the names of all committed models in execution order.
func (c *Context) ListModels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, h := range c.history {
		if h.Action == "model_executed" {
			out = append(out, h.Name)
		}
	}
	// Re-runs appear once, at their first position.
	return dedupe(out)
}

// History returns a copy of the execution log.
func (c *Context) History() []HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]HistoryEntry, len(c.history))
	copy(out, c.history)
	return out
}

// Summary renders a human-readable account of the session.
func (c *Context) Summary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d datasets, %d models, %d steps\n",
		c.runID, len(c.datasets), len(c.models), len(c.history))
	for _, name := range c.datasetNames() {
		d := c.datasets[name]
		fmt.Fprintf(&b, "  dataset %s: %d rows x %d columns\n", name, d.Len(), len(d.Columns()))
	}
	for _, model := range dedupe(c.modelNames()) {
		out := c.models[model]
		fmt.Fprintf(&b, "  model %s: input=%s filters=%d attrs=%d\n",
			model, out.InputDatasetName, len(out.FilterColumns), len(out.AttrColumns))
	}
	return b.String()
}

// log appends a dataset event to the history. Callers hold the write lock.
func (c *Context) log(action, name string, d *dataset.Dataset) {
	c.history = append(c.history, HistoryEntry{
		Action:  action,
		Name:    name,
		Rows:    d.Len(),
		Columns: len(d.Columns()),
		At:      time.Now(),
	})
}

// datasetNames returns dataset names in first-stored order. Callers hold a lock.
func (c *Context) datasetNames() []string {
	var out []string
	for _, h := range c.history {
		if h.Action == "set_dataset" {
			if _, still := c.datasets[h.Name]; still {
				out = append(out, h.Name)
			}
		}
	}
	return dedupe(out)
}

func (c *Context) modelNames() []string {
	var out []string
	for _, h := range c.history {
		if h.Action == "model_executed" {
			out = append(out, h.Name)
		}
	}
	return out
}

func rowsOf(d *dataset.Dataset) int {
	if d == nil {
		return 0
	}
	return d.Len()
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
