package schema

import (
	_ "embed"
)

//go:embed agent_schema.json
var builtinSchema []byte

// Builtin returns the registry for the agent definition language shipped
// with the engine: runtime, variable, model, plugin (with distinct local and
// remote shapes), and agent blocks. Callers that bring their own block types
// load a registry from their own schema document instead.
func Builtin() *Registry {
	reg, err := ParseJSON(builtinSchema)
	if err != nil {
		// The embedded schema is part of the build; failing to parse it is a
		// programmer error.
		panic("builtin agent schema is invalid: " + err.Error())
	}
	return reg
}
