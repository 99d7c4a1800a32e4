// Package vars collects variable override values from their three external
// sources (command-line assignments, var-files, environment pairs) and
// answers precedence queries for the resolver. The store never evaluates
// default expressions; defaults live in variable blocks and are resolved
// lazily by the expression resolver.
package vars
