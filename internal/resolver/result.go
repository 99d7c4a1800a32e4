package resolver

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/agentfoundry/internal/vars"
)

// Block is a fully resolved block: every attribute holds a concrete value,
// no expression survives.
type Block struct {
	Type     string
	Labels   []string
	Attrs    map[string]cty.Value
	Nested   []*Block
	DefRange hcl.Range
}

// Attr returns the named attribute value, or cty.NilVal when unset.
func (b *Block) Attr(name string) cty.Value {
	if v, ok := b.Attrs[name]; ok {
		return v
	}
	return cty.NilVal
}

// NestedOfType returns nested resolved blocks of the given type in source order.
func (b *Block) NestedOfType(name string) []*Block {
	var out []*Block
	for _, nb := range b.Nested {
		if nb.Type == name {
			out = append(out, nb)
		}
	}
	return out
}

// Variable is a declared variable together with its effective value and the
// source that supplied it.
type Variable struct {
	Name        string
	Type        string
	Description string
	Sensitive   bool
	Value       cty.Value
	Source      vars.Source
	DeclRange   hcl.Range

	// Nested holds blocks found inside the declaration, resolved like any
	// other block body so the validator can rule on them.
	Nested []*Block
}

// Result is the outcome of one resolution pass, before schema validation and
// reference binding.
type Result struct {
	Runtime   *Block
	Variables map[string]*Variable
	Models    map[string]*Block
	Plugins   map[string]*Block // keyed kind:name
	Agents    map[string]*Block

	// All holds every resolved top-level block, including a synthetic block
	// per variable declaration, in a deterministic order for validation.
	All []*Block
}
