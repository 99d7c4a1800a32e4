// Package foundry assembles the final configuration. It merges parsed
// documents, runs expression resolution and schema validation, then binds
// cross-block references so every agent holds direct pointers to its model
// and plugins. The resulting Config is plain Go data with no expressions and
// no cty values; callers may read it concurrently.
package foundry
