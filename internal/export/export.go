// Package export writes model outputs back to disk as CSV files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/dataset"
	"github.com/gabeda-io/gabeda/internal/gabeda"
)

// Model writes the three tables of a completed model run into dir:
// <model>_input.csv, <model>_filters.csv, and <model>_attrs.csv. The
// directory is created if it does not exist.
func Model(ctx context.Context, session *gabeda.Context, model, dir string) error {
	logger := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	tables := []struct {
		suffix string
		fetch  func(string) (*dataset.Dataset, error)
	}{
		{"input", session.ModelInput},
		{"filters", session.ModelFilters},
		{"attrs", session.ModelAttrs},
	}

	for _, tbl := range tables {
		d, err := tbl.fetch(model)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", model, tbl.suffix))
		if err := dataset.WriteCSVFile(d, path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		logger.Debug("Wrote model table.", "model", model, "table", tbl.suffix, "path", path, "rows", d.Len())
	}
	return nil
}
