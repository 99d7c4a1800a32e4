// Package ctyval bridges between native Go values, cty values, and the
// configuration language's type keywords (string, number, bool, list, map,
// any). It is the single place where the engine converts across those three
// worlds.
package ctyval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Keywords lists every valid type keyword, in the order used by error
// messages and the builtin schema.
var Keywords = []string{"string", "number", "bool", "list", "map", "any"}

// ValidKeyword reports whether kw is one of the language's type keywords.
func ValidKeyword(kw string) bool {
	for _, k := range Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// TypeKeyword extracts a type keyword from an attribute expression. Both the
// bare identifier form (`type = number`) and the quoted form
// (`type = "number"`) are accepted.
func TypeKeyword(expr hcl.Expression) (string, error) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && len(traversal) == 1 {
		kw := traversal.RootName()
		if !ValidKeyword(kw) {
			return "", fmt.Errorf("invalid type keyword %q, expected one of %s", kw, strings.Join(Keywords, ", "))
		}
		return kw, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.Type() != cty.String {
		return "", fmt.Errorf("type must be a keyword like string, number, or bool")
	}
	kw := val.AsString()
	if !ValidKeyword(kw) {
		return "", fmt.Errorf("invalid type keyword %q, expected one of %s", kw, strings.Join(Keywords, ", "))
	}
	return kw, nil
}

// MatchesKeyword reports whether a resolved value satisfies a type keyword.
// Null values satisfy every keyword; requiredness is checked separately.
func MatchesKeyword(val cty.Value, kw string) bool {
	if val.IsNull() {
		return true
	}
	ty := val.Type()
	switch kw {
	case "any":
		return true
	case "string":
		return ty == cty.String
	case "number":
		return ty == cty.Number
	case "bool":
		return ty == cty.Bool
	case "list":
		return ty.IsTupleType() || ty.IsListType() || ty.IsSetType()
	case "map":
		return ty.IsObjectType() || ty.IsMapType()
	}
	return false
}

// KeywordForValue returns the keyword naming a value's type, for error
// messages.
func KeywordForValue(val cty.Value) string {
	if val.IsNull() {
		return "null"
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return "string"
	case ty == cty.Number:
		return "number"
	case ty == cty.Bool:
		return "bool"
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		return "list"
	case ty.IsObjectType() || ty.IsMapType():
		return "map"
	}
	return ty.FriendlyName()
}

// FromGo converts a plain Go value (the shapes produced by encoding/json and
// the CLI scalar parser) into a cty value.
func FromGo(v interface{}) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(tv), nil
	case string:
		return cty.StringVal(tv), nil
	case int:
		return cty.NumberIntVal(int64(tv)), nil
	case int64:
		return cty.NumberIntVal(tv), nil
	case float64:
		return cty.NumberFloatVal(tv), nil
	case []interface{}:
		if len(tv) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(tv))
		for i, item := range tv {
			ev, err := FromGo(item)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]interface{}:
		if len(tv) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(tv))
		for k, item := range tv {
			ev, err := FromGo(item)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("cannot represent Go value of type %T", v)
	}
}

// ToGo converts a cty value into plain Go values suitable for JSON encoding
// and for handing to runtime code. Numbers become float64; object and map
// keys keep their identity.
func ToGo(val cty.Value) interface{} {
	if val.IsNull() {
		return nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString()
	case ty == cty.Bool:
		return val.True()
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]interface{}, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ToGo(ev))
		}
		return out
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]interface{})
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ToGo(ev)
		}
		return out
	}
	return nil
}

// ParseScalar applies the language's scalar coercion rules to a raw string
// from a -var flag or environment variable: true/false become bools, numeric
// strings become numbers, everything else stays a string.
func ParseScalar(s string) interface{} {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// NumberFloat extracts a float64 from a cty number.
func NumberFloat(val cty.Value) float64 {
	f, _ := val.AsBigFloat().Float64()
	return f
}

// NumberInt extracts an int from a cty number, truncating any fraction.
func NumberInt(val cty.Value) int {
	i, _ := val.AsBigFloat().Int64()
	return int(i)
}

// FormatForDisplay renders a value for error messages: scalars verbatim,
// collections in a compact stable form.
func FormatForDisplay(val cty.Value) string {
	if val.IsNull() {
		return "null"
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString()
	case ty == cty.Bool:
		return strconv.FormatBool(val.True())
	case ty == cty.Number:
		return val.AsBigFloat().Text('g', -1)
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		parts := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			parts = append(parts, FormatForDisplay(ev))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ty.IsObjectType() || ty.IsMapType():
		var parts []string
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			parts = append(parts, k.AsString()+"="+FormatForDisplay(ev))
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return ty.FriendlyName()
}
