package document

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// SyntaxError reports a malformed document. Pos points at the offending
// token; Diags keeps the full diagnostic set for callers that want every
// problem the parser found.
type SyntaxError struct {
	Filename string
	Pos      hcl.Pos
	Summary  string
	Detail   string
	Diags    hcl.Diagnostics
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("%s:%d,%d: %s", e.Filename, e.Pos.Line, e.Pos.Column, e.Summary)
	if e.Detail != "" {
		msg += "; " + e.Detail
	}
	return msg
}

// newSyntaxError lifts the first error diagnostic into a SyntaxError,
// preserving the rest for inspection.
func newSyntaxError(filename string, diags hcl.Diagnostics) *SyntaxError {
	err := &SyntaxError{Filename: filename, Diags: diags}
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		err.Summary = diag.Summary
		err.Detail = diag.Detail
		if diag.Subject != nil {
			err.Pos = diag.Subject.Start
			if diag.Subject.Filename != "" {
				err.Filename = diag.Subject.Filename
			}
		}
		break
	}
	return err
}

// DuplicateBlockError reports two blocks sharing the same (type, labels)
// identity across the merged document set.
type DuplicateBlockError struct {
	Identity string
	First    hcl.Range
	Second   hcl.Range
}

func (e *DuplicateBlockError) Error() string {
	return fmt.Sprintf("duplicate block %q: first declared at %s, redeclared at %s",
		e.Identity, e.First.String(), e.Second.String())
}
