// Package plan is the planning layer of the engine. It builds a directed
// dependency graph from feature definitions, orders it with a depth-first
// post-order traversal (detecting cycles), and assigns every step the
// execution flags and case the engine dispatches on. All planning errors
// surface before any data is touched.
package plan
