package document

import (
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// maxLabels is the most labels any block type in the language carries
// (plugin blocks use two: kind and name).
const maxLabels = 2

// Parse turns raw HCL source into a Document. It is total and side-effect
// free: expressions are captured verbatim and never evaluated. Any syntactic
// problem is reported as a *SyntaxError carrying file, line, and column.
func Parse(filename string, src []byte) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, newSyntaxError(filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		// ParseHCL on native syntax always yields *hclsyntax.Body.
		return nil, &SyntaxError{Filename: filename, Summary: "unsupported configuration syntax"}
	}

	doc := &Document{Filename: filename}
	for _, rawBlock := range body.Blocks {
		block, err := convertBlock(filename, rawBlock)
		if err != nil {
			return nil, err
		}
		doc.Blocks = append(doc.Blocks, block)
	}

	// Top-level attributes outside any block are not part of the language.
	for _, attr := range body.Attributes {
		return nil, &SyntaxError{
			Filename: filename,
			Pos:      attr.NameRange.Start,
			Summary:  "attribute outside of a block",
			Detail:   "top-level values must be declared inside a variable, runtime, model, plugin, or agent block",
		}
	}

	return doc, nil
}

func convertBlock(filename string, raw *hclsyntax.Block) (*Block, error) {
	if len(raw.Labels) > maxLabels {
		return nil, &SyntaxError{
			Filename: filename,
			Pos:      raw.TypeRange.Start,
			Summary:  "too many block labels",
			Detail:   "blocks accept at most two labels",
		}
	}

	block := &Block{
		Type:       raw.Type,
		Labels:     raw.Labels,
		Attributes: make(map[string]*Attribute, len(raw.Body.Attributes)),
		DefRange:   raw.DefRange(),
	}

	for name, attr := range raw.Body.Attributes {
		block.Attributes[name] = &Attribute{
			Name:  name,
			Expr:  attr.Expr,
			Range: attr.SrcRange,
		}
	}

	for _, rawNested := range raw.Body.Blocks {
		nested, err := convertBlock(filename, rawNested)
		if err != nil {
			return nil, err
		}
		block.Nested = append(block.Nested, nested)
	}

	return block, nil
}

// ParseAttributes parses a source consisting only of top-level `name = value`
// assignments, the shape used by variable override files. Every value is
// evaluated immediately with no variable scope, so interpolation is rejected.
func ParseAttributes(filename string, src []byte) (map[string]cty.Value, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, newSyntaxError(filename, diags)
	}

	attrs, attrDiags := file.Body.JustAttributes()
	if attrDiags.HasErrors() {
		return nil, newSyntaxError(filename, attrDiags)
	}

	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			return nil, newSyntaxError(filename, valDiags)
		}
		values[name] = val
	}
	return values, nil
}
