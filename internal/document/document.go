package document

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Document is the ordered sequence of top-level blocks parsed from one
// source file.
type Document struct {
	Filename string
	Blocks   []*Block
}

// Block is a single configuration block: a type, up to two string labels,
// attributes holding unevaluated expressions, and nested blocks.
type Block struct {
	Type       string
	Labels     []string
	Attributes map[string]*Attribute
	Nested     []*Block
	DefRange   hcl.Range
}

// Attribute is one `name = <expression>` entry inside a block body. The
// expression is never evaluated here; interpolation happens in the resolver.
type Attribute struct {
	Name  string
	Expr  hcl.Expression
	Range hcl.Range
}

// Identity returns the block's identity key: its type joined with its
// labels. Two blocks with the same identity across the merged document set
// are a configuration error.
func (b *Block) Identity() string {
	if len(b.Labels) == 0 {
		return b.Type
	}
	return b.Type + "." + strings.Join(b.Labels, ".")
}

// Attr returns the named attribute, or nil if the block does not set it.
func (b *Block) Attr(name string) *Attribute {
	return b.Attributes[name]
}

// NestedOfType returns all nested blocks with the given type, in source order.
func (b *Block) NestedOfType(name string) []*Block {
	var out []*Block
	for _, nb := range b.Nested {
		if nb.Type == name {
			out = append(out, nb)
		}
	}
	return out
}
