// Package feature holds the feature registry and the declared capability
// descriptor each feature carries. The store maps names to definitions and
// preserves registration order; the type detector turns a descriptor into a
// filter/attribute classification without inspecting the callable.
package feature
