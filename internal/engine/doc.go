// Package engine executes a resolved feature plan against a dataset.
//
// Execution walks the plan step by step, dispatching each feature by its
// case: row-level filters are computed per input row, aggregations once per
// group, and compositions once over the finished attribute columns. The
// result is a pair of aligned tables, filters at input-row grain and attrs
// at group grain, packaged as a gabeda.ModelOutput.
//
// The Runner ties the engine to a session: it merges external sources into
// the input, plans the requested outputs, executes, and commits the output
// back to the session only when the whole run has succeeded.
package engine
