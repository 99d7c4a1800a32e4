// Package document is the syntactic layer of the configuration engine. It
// parses raw HCL text into an untyped tree of blocks and attributes, keeping
// every attribute value as an unevaluated expression. Nothing in this package
// knows about schemas, variables, or interpolation semantics; it only
// guarantees a well-formed tree with source positions attached.
package document
