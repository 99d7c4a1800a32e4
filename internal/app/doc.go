// Package app wires the engine together for the command line: logger setup,
// configuration discovery, variable collection, the resolution pass, and
// output rendering.
package app
