package app

import (
	"context"
	"fmt"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/dataset"
	"github.com/gabeda-io/gabeda/internal/engine"
	"github.com/gabeda-io/gabeda/internal/export"
	"github.com/gabeda-io/gabeda/internal/manifest"
)

// Run executes the full pipeline: load the manifest, load input datasets,
// register features, run every model in declaration order, and export the
// results.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "run_id", a.session.RunID())

	loader := manifest.NewLoader()
	pipeline, err := loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}
	a.logger.Info("Pipeline loaded.",
		"datasets", len(pipeline.Datasets),
		"features", len(pipeline.Features),
		"models", len(pipeline.Models))

	for _, src := range pipeline.Datasets {
		d, err := dataset.ReadCSVFile(src.Path)
		if err != nil {
			return fmt.Errorf("failed to load dataset %q: %w", src.Name, err)
		}
		if err := a.session.SetDataset(src.Name, d); err != nil {
			return err
		}
		a.logger.Info("Dataset loaded.", "name", src.Name, "rows", d.Len(), "columns", len(d.Columns()))
	}

	for _, def := range pipeline.Features {
		if err := a.store.Register(def); err != nil {
			return fmt.Errorf("failed to register feature: %w", err)
		}
	}
	a.logger.Debug("All features registered.", "count", a.store.Len())

	runner := engine.NewRunner(a.store, a.session)
	for _, model := range pipeline.Models {
		if _, err := runner.RunModel(ctx, model); err != nil {
			return err
		}
		if a.config.OutputDir != "" {
			if err := export.Model(ctx, a.session, model.Name, a.config.OutputDir); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(a.outW, a.session.Summary())
	a.logger.Debug("App.Run method finished.")
	return nil
}
