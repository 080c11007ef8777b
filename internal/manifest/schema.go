package manifest

import (
	"github.com/hashicorp/hcl/v2"
)

// DatasetBlock declares a CSV-backed input dataset. The path is resolved
// relative to the process working directory unless absolute.
type DatasetBlock struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

// FeatureBlock declares a derived feature. The expression is captured
// unevaluated; its variable references become the feature's dependencies.
type FeatureBlock struct {
	Name       string         `hcl:"name,label"`
	Kind       string         `hcl:"kind,optional"`
	GroupKey   bool           `hcl:"group_key,optional"`
	Expression hcl.Expression `hcl:"expression"`
}

// ExternalBlock declares a lookup dataset merged into a model's input
// before execution.
type ExternalBlock struct {
	Name    string   `hcl:"name,label"`
	Source  string   `hcl:"source"`
	JoinOn  []string `hcl:"join_on"`
	Columns []string `hcl:"columns,optional"`
}

// ModelBlock declares one model run over an input dataset.
type ModelBlock struct {
	Name     string           `hcl:"name,label"`
	Input    string           `hcl:"input"`
	GroupBy  []string         `hcl:"group_by,optional"`
	Outputs  []string         `hcl:"outputs"`
	External []*ExternalBlock `hcl:"external,block"`
}

// fileRoot decodes all recognized top-level blocks from any pipeline file.
type fileRoot struct {
	Datasets []*DatasetBlock `hcl:"dataset,block"`
	Features []*FeatureBlock `hcl:"feature,block"`
	Models   []*ModelBlock   `hcl:"model,block"`
	Remain   hcl.Body        `hcl:",remain"`
}
