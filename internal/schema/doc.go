// Package schema holds the data-driven description of which block shapes are
// legal in the configuration language. The registry is pure data plus a
// lookup function: adding a new block type means adding a schema document
// entry, never engine code. Lookup keys combine the block type with its label
// path, so `plugin "remote" "x"` can be given a stricter shape than
// `plugin "local" "x"`.
package schema
