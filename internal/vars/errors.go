package vars

import (
	"fmt"
	"strings"
)

// MissingVariableError reports a variable that has no override and no
// default, or a reference to a variable that was never declared.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("no value for variable %q: supply -var, a var file, %s%s, or a default", e.Name, EnvPrefix, strings.ToUpper(e.Name))
}

// TypeMismatchError reports a variable whose supplied or resolved value does
// not satisfy its declared type.
type TypeMismatchError struct {
	Name     string
	Declared string
	Actual   string
	Source   Source
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("variable %q: value from %s is %s, declared type is %s", e.Name, e.Source, e.Actual, e.Declared)
}
