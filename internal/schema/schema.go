package schema

import "fmt"

// Nesting modes for nested block types.
const (
	NestingSingle = "single"
	NestingList   = "list"
)

// Block describes the legal shape of one block: its attributes and the
// nested block types it may contain.
type Block struct {
	Attributes map[string]*Attribute   `json:"attributes" yaml:"attributes"`
	BlockTypes map[string]*NestedBlock `json:"block_types" yaml:"block_types"`
}

// Attribute describes a single attribute: its type keyword, requiredness,
// optional default, sensitivity, and validation rules.
type Attribute struct {
	Type       string      `json:"type" yaml:"type"`
	Required   bool        `json:"required" yaml:"required"`
	Default    interface{} `json:"default" yaml:"default"`
	Sensitive  bool        `json:"sensitive" yaml:"sensitive"`
	Validation []*Rule     `json:"validation" yaml:"validation"`
}

// NestedBlock describes a nested block type: how many instances may appear
// and the schema of each instance. MaxItems of zero means unbounded.
type NestedBlock struct {
	NestingMode string `json:"nesting_mode" yaml:"nesting_mode"`
	MinItems    int    `json:"min_items" yaml:"min_items"`
	MaxItems    int    `json:"max_items" yaml:"max_items"`
	Block       *Block `json:"block" yaml:"block"`
}

// Rule is one validation rule attached to an attribute. Exactly one of
// Range, Pattern, or Options is set; ErrorMessage overrides the generated
// message when present.
type Rule struct {
	Range        *RangeRule    `json:"range" yaml:"range"`
	Pattern      string        `json:"pattern" yaml:"pattern"`
	Options      []interface{} `json:"options" yaml:"options"`
	ErrorMessage string        `json:"error_message" yaml:"error_message"`
}

// RangeRule bounds a numeric value, inclusive on both ends. A nil bound is
// unconstrained.
type RangeRule struct {
	Min *float64 `json:"min" yaml:"min"`
	Max *float64 `json:"max" yaml:"max"`
}

// UnknownBlockTypeError reports a block whose type (or type/label shape) has
// no schema entry.
type UnknownBlockTypeError struct {
	BlockType string
	Labels    []string
}

func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("no schema found for block type %q", e.BlockType)
}
