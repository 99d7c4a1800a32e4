package foundry

import "fmt"

// UnresolvedReferenceError reports an agent attribute pointing at a model or
// plugin that does not exist in the resolved configuration.
type UnresolvedReferenceError struct {
	Path   string // e.g. "agent.helper.model"
	Target string // the reference as written
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: reference to unknown target %q", e.Path, e.Target)
}
