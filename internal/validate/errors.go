package validate

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Error is a single validation finding. Path locates the offending element
// inside the configuration, for example "model.gpt4.settings.temperature".
type Error struct {
	Path    string
	Message string
	Subject hcl.Range
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Errors collects every finding from one validation pass.
type Errors []*Error

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return "no validation errors"
	case 1:
		return es[0].Error()
	}
	lines := make([]string, 0, len(es)+1)
	lines = append(lines, fmt.Sprintf("%d validation errors:", len(es)))
	for _, e := range es {
		lines = append(lines, "  - "+e.Error())
	}
	return strings.Join(lines, "\n")
}

// ErrOrNil returns the collected errors as an error, or nil when empty.
func (es Errors) ErrOrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}
