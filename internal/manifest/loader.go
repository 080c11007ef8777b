package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/engine"
	"github.com/gabeda-io/gabeda/internal/feature"
)

// DatasetSource names a CSV file to load as an input dataset.
type DatasetSource struct {
	Name string
	Path string
}

// Pipeline is the fully translated content of a set of manifest files:
// datasets to load, features to register, and models to run, each in
// declaration order.
type Pipeline struct {
	Datasets []DatasetSource
	Features []*feature.Definition
	Models   []engine.ModelConfig
}

// Loader parses HCL pipeline files into a Pipeline.
type Loader struct{}

// NewLoader creates a new pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths (files or directories)
// and translates the declared blocks. Declaration order is preserved across
// files in the order the files are discovered.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Pipeline, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found under %v", paths)
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	parser := hclparse.NewParser()
	pipeline := &Pipeline{}
	seenDatasets := make(map[string]bool)
	seenFeatures := make(map[string]bool)
	seenModels := make(map[string]bool)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}

		for _, ds := range root.Datasets {
			if seenDatasets[ds.Name] {
				return nil, fmt.Errorf("%s: duplicate dataset %q", file, ds.Name)
			}
			seenDatasets[ds.Name] = true
			path := ds.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(filepath.Dir(file), path)
			}
			pipeline.Datasets = append(pipeline.Datasets, DatasetSource{Name: ds.Name, Path: path})
		}
		for _, fb := range root.Features {
			if seenFeatures[fb.Name] {
				return nil, fmt.Errorf("%s: duplicate feature %q", file, fb.Name)
			}
			seenFeatures[fb.Name] = true
			def, err := translateFeature(fb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			pipeline.Features = append(pipeline.Features, def)
		}
		for _, mb := range root.Models {
			if seenModels[mb.Name] {
				return nil, fmt.Errorf("%s: duplicate model %q", file, mb.Name)
			}
			seenModels[mb.Name] = true
			pipeline.Models = append(pipeline.Models, translateModel(mb))
		}
	}

	logger.Debug("Pipeline loading complete.",
		"datasets", len(pipeline.Datasets),
		"features", len(pipeline.Features),
		"models", len(pipeline.Models))
	return pipeline, nil
}

// translateFeature turns a declared block into a runnable definition. The
// expression's variable references, in source order, become the feature's
// dependencies; at run time each dependency is bound back to its name in
// the evaluation scope.
func translateFeature(b *FeatureBlock) (*feature.Definition, error) {
	kind, err := parseKind(b.Kind)
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", b.Name, err)
	}

	deps := dependencyNames(b.Expression)
	if len(deps) == 0 {
		return nil, fmt.Errorf("feature %q: expression references no columns or features", b.Name)
	}

	name := b.Name
	expr := b.Expression
	eval := func(args []cty.Value) (cty.Value, error) {
		vars := make(map[string]cty.Value, len(deps))
		for i, dep := range deps {
			vars[dep] = args[i]
		}
		v, diags := expr.Value(&hcl.EvalContext{
			Variables: vars,
			Functions: EvalFunctions(),
		})
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("evaluating feature %q: %w", name, diags)
		}
		return v, nil
	}

	return &feature.Definition{
		Name:             b.Name,
		Kind:             kind,
		Dependencies:     deps,
		RequiresGroupKey: b.GroupKey,
		Fn:               eval,
	}, nil
}

func translateModel(b *ModelBlock) engine.ModelConfig {
	cfg := engine.ModelConfig{
		Name:    b.Name,
		Input:   b.Input,
		GroupBy: b.GroupBy,
		Outputs: b.Outputs,
	}
	for _, ext := range b.External {
		cfg.External = append(cfg.External, engine.Source{
			Name:    ext.Name,
			Source:  ext.Source,
			JoinOn:  ext.JoinOn,
			Columns: ext.Columns,
		})
	}
	return cfg
}

func parseKind(s string) (feature.Kind, error) {
	switch s {
	case "":
		return feature.KindUnspecified, nil
	case "filter":
		return feature.KindFilter, nil
	case "attribute":
		return feature.KindAttribute, nil
	default:
		return feature.KindUnspecified, fmt.Errorf("unknown kind %q (want \"filter\" or \"attribute\")", s)
	}
}

// dependencyNames collects the root names referenced by an expression, in
// first-occurrence source order.
func dependencyNames(expr hcl.Expression) []string {
	var names []string
	seen := make(map[string]bool)
	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if !seen[root] {
			seen[root] = true
			names = append(names, root)
		}
	}
	return names
}

// findHCLFiles walks the given paths and returns every .hcl file, in
// discovery order, deduplicated.
func findHCLFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" && !seen[p] {
					files = append(files, p)
					seen[p] = true
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}
	}
	return files, nil
}
