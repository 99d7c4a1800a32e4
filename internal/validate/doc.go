// Package validate checks resolved blocks against a schema registry. The
// walk accumulates every finding instead of stopping at the first, so one run
// reports everything wrong with a configuration. Only a block type with no
// schema entry at all aborts the walk early.
package validate
