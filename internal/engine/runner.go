package engine

import (
	"context"
	"fmt"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/feature"
	"github.com/gabeda-io/gabeda/internal/gabeda"
	"github.com/gabeda-io/gabeda/internal/plan"
)

// ModelConfig describes one model run: which dataset to read, how to group
// it, which features to produce, and which external sources to merge first.
type ModelConfig struct {
	Name     string
	Input    string
	GroupBy  []string
	Outputs  []string
	External []Source
}

// Runner coordinates a full model run end to end: fetch the input from the
// session, merge external sources, plan, execute, and commit the output.
// The commit happens only after the whole plan succeeds; a failed run
// leaves the session exactly as it was.
type Runner struct {
	store   *feature.Store
	session *gabeda.Context
}

// NewRunner creates a runner over a feature store and a session context.
func NewRunner(store *feature.Store, session *gabeda.Context) *Runner {
	return &Runner{store: store, session: session}
}

// RunModel executes one model and commits its output to the session under
// the model's name, replacing any previous output.
func (r *Runner) RunModel(ctx context.Context, cfg ModelConfig) (*gabeda.ModelOutput, error) {
	logger := ctxlog.FromContext(ctx)
	if cfg.Name == "" {
		return nil, fmt.Errorf("model config must declare a name")
	}
	if cfg.Input == "" {
		return nil, fmt.Errorf("model %q must declare an input dataset", cfg.Name)
	}
	if len(cfg.Outputs) == 0 {
		return nil, fmt.Errorf("model %q declares no outputs", cfg.Name)
	}

	data, err := r.session.Dataset(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", cfg.Name, err)
	}
	logger.Info("Executing model.",
		"model", cfg.Name,
		"input", cfg.Input,
		"rows", data.Len(),
		"group_by", cfg.GroupBy,
		"outputs", len(cfg.Outputs))

	merged, extCols, err := MergeExternal(ctx, data, cfg.External, r.session)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", cfg.Name, err)
	}

	resolver := plan.NewResolver(r.store)
	p, err := resolver.Resolve(ctx, plan.Request{
		Outputs:         cfg.Outputs,
		Columns:         data.Columns(),
		ExternalColumns: extCols,
		GroupBy:         cfg.GroupBy,
	})
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", cfg.Name, err)
	}

	out, err := Execute(ctx, p, merged, Config{GroupBy: cfg.GroupBy, ExternalColumns: extCols})
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", cfg.Name, err)
	}
	out.InputDatasetName = cfg.Input

	if err := r.session.SetModelOutput(cfg.Name, out); err != nil {
		return nil, fmt.Errorf("model %q: %w", cfg.Name, err)
	}
	logger.Info("Model complete.",
		"model", cfg.Name,
		"filters", len(out.FilterColumns),
		"attrs", len(out.AttrColumns))
	return out, nil
}
