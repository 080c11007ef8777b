// Package manifest loads HCL pipeline files describing datasets, features,
// and model runs.
//
// Feature expressions are kept unevaluated at load time; the variable
// references inside them determine the feature's dependencies, and the
// expression is wrapped into a closure that evaluates with those
// dependencies bound when the engine invokes it. Aggregation calls such as
// sum() and mean() operate over the value sequences the engine supplies.
package manifest
