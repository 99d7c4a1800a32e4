// Package resolver evaluates every interpolation expression in a merged
// document set. Each variable and each labeled block is a resolution cell;
// cells are resolved by memoized recursion, so the dependency graph between
// expressions is walked in topological order without ever being materialized.
// A cell revisited while still in progress is a circular dependency and
// aborts the pass with the full cycle path. Declaration order across files
// never matters; only the references do.
package resolver
