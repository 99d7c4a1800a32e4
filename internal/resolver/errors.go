package resolver

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// CircularDependencyError reports a reference cycle. Cycle holds the chain
// of cell keys, starting and ending at the same cell.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return "circular dependency detected: " + strings.Join(e.Cycle, " -> ")
}

// UnresolvedReferenceError reports an expression referencing a block that
// does not exist in the merged configuration.
type UnresolvedReferenceError struct {
	Ref     string
	Subject hcl.Range
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Subject.Filename == "" {
		return fmt.Sprintf("reference to undeclared object %q", e.Ref)
	}
	return fmt.Sprintf("%s: reference to undeclared object %q", e.Subject.String(), e.Ref)
}

// EvalError wraps an expression that referenced only known objects but still
// failed to evaluate, for example an operator applied to the wrong types.
type EvalError struct {
	Subject hcl.Range
	Diags   hcl.Diagnostics
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject.String(), e.Diags.Error())
}
