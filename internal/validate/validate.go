package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/agentfoundry/internal/ctyval"
	"github.com/vk/agentfoundry/internal/resolver"
	"github.com/vk/agentfoundry/internal/schema"
)

// Validator checks resolved blocks against a schema registry.
type Validator struct {
	registry *schema.Registry
	patterns map[string]*regexp.Regexp
}

// New returns a validator backed by the given registry.
func New(registry *schema.Registry) *Validator {
	return &Validator{
		registry: registry,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Validate walks every resolved block. A block type absent from the registry
// aborts immediately with UnknownBlockTypeError; every other finding is
// accumulated and returned together as Errors.
func (v *Validator) Validate(result *resolver.Result) error {
	var errs Errors
	for _, block := range result.All {
		blockSchema, ok := v.registry.Lookup(block.Type, block.Labels)
		if !ok {
			return &schema.UnknownBlockTypeError{BlockType: block.Type, Labels: block.Labels}
		}
		path := block.Type
		if len(block.Labels) > 0 {
			path += "." + strings.Join(block.Labels, ".")
		}
		errs = append(errs, v.validateBlock(path, block, blockSchema)...)
	}
	return errs.ErrOrNil()
}

func (v *Validator) validateBlock(path string, block *resolver.Block, blockSchema *schema.Block) Errors {
	var errs Errors

	attrNames := make([]string, 0, len(blockSchema.Attributes))
	for name := range blockSchema.Attributes {
		attrNames = append(attrNames, name)
	}
	sort.Strings(attrNames)

	for _, name := range attrNames {
		attrSchema := blockSchema.Attributes[name]
		val := block.Attr(name)
		if val == cty.NilVal || val.IsNull() {
			if attrSchema.Required {
				errs = append(errs, &Error{
					Path:    path,
					Message: "Required attribute missing: " + name,
					Subject: block.DefRange,
				})
			}
			continue
		}
		errs = append(errs, v.validateAttr(path+"."+name, val, attrSchema, block)...)
	}

	presentNames := make([]string, 0, len(block.Attrs))
	for name := range block.Attrs {
		presentNames = append(presentNames, name)
	}
	sort.Strings(presentNames)
	for _, name := range presentNames {
		if _, known := blockSchema.Attributes[name]; !known {
			errs = append(errs, &Error{
				Path:    path,
				Message: "Unknown attribute: " + name,
				Subject: block.DefRange,
			})
		}
	}

	errs = append(errs, v.validateNested(path, block, blockSchema)...)
	return errs
}

func (v *Validator) validateAttr(path string, val cty.Value, attrSchema *schema.Attribute, block *resolver.Block) Errors {
	var errs Errors

	keyword := attrSchema.Type
	if keyword == "" {
		keyword = "any"
	}
	if !ctyval.MatchesKeyword(val, keyword) {
		errs = append(errs, &Error{
			Path:    path,
			Message: "Expected type " + keyword,
			Subject: block.DefRange,
		})
		return errs
	}

	for _, rule := range attrSchema.Validation {
		if msg := v.applyRule(rule, val); msg != "" {
			errs = append(errs, &Error{
				Path:    path,
				Message: msg,
				Subject: block.DefRange,
			})
		}
	}
	return errs
}

// applyRule returns an error message when the value violates the rule, or
// the empty string when it passes.
func (v *Validator) applyRule(rule *schema.Rule, val cty.Value) string {
	switch {
	case rule.Range != nil:
		if val.Type() != cty.Number {
			return "" // type check already reported
		}
		f := ctyval.NumberFloat(val)
		if rule.Range.Min != nil && f < *rule.Range.Min {
			return v.message(rule, rangeMessage(rule.Range))
		}
		if rule.Range.Max != nil && f > *rule.Range.Max {
			return v.message(rule, rangeMessage(rule.Range))
		}
	case rule.Pattern != "":
		if val.Type() != cty.String {
			return ""
		}
		re, err := v.pattern(rule.Pattern)
		if err != nil {
			return fmt.Sprintf("Invalid validation pattern %q: %s", rule.Pattern, err)
		}
		if !re.MatchString(val.AsString()) {
			return v.message(rule, fmt.Sprintf("Value %q does not match pattern %q", val.AsString(), rule.Pattern))
		}
	case len(rule.Options) > 0:
		got := ctyval.ToGo(val)
		for _, opt := range rule.Options {
			if scalarEqual(got, opt) {
				return ""
			}
		}
		return v.message(rule, "Value must be one of: "+optionList(rule.Options))
	}
	return ""
}

func (v *Validator) message(rule *schema.Rule, fallback string) string {
	if rule.ErrorMessage != "" {
		return rule.ErrorMessage
	}
	return fallback
}

func (v *Validator) pattern(expr string) (*regexp.Regexp, error) {
	if re, ok := v.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v.patterns[expr] = re
	return re, nil
}

func rangeMessage(r *schema.RangeRule) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("Value must be between %v and %v", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("Value must be at least %v", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("Value must be at most %v", *r.Max)
	}
	return "Value out of range"
}

// scalarEqual compares a resolved value against a schema option. JSON and
// YAML hand integers to Go as float64 or int, so numbers compare by value.
func scalarEqual(got, opt interface{}) bool {
	gf, gok := asFloat(got)
	of, ook := asFloat(opt)
	if gok && ook {
		return gf == of
	}
	return got == opt
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func optionList(options []interface{}) string {
	parts := make([]string, len(options))
	for i, opt := range options {
		parts[i] = fmt.Sprintf("%v", opt)
	}
	return strings.Join(parts, ", ")
}

func (v *Validator) validateNested(path string, block *resolver.Block, blockSchema *schema.Block) Errors {
	var errs Errors

	nestedNames := make([]string, 0, len(blockSchema.BlockTypes))
	for name := range blockSchema.BlockTypes {
		nestedNames = append(nestedNames, name)
	}
	sort.Strings(nestedNames)

	for _, name := range nestedNames {
		nestedSchema := blockSchema.BlockTypes[name]
		instances := block.NestedOfType(name)

		switch nestedSchema.NestingMode {
		case schema.NestingSingle:
			if len(instances) > 1 {
				errs = append(errs, &Error{
					Path:    path + "." + name,
					Message: "Multiple blocks not allowed (nesting_mode=single)",
					Subject: instances[1].DefRange,
				})
			}
			// min_items of 1 makes a single nested block mandatory.
			if len(instances) < nestedSchema.MinItems {
				errs = append(errs, &Error{
					Path:    path + "." + name,
					Message: "Required block missing: " + name,
					Subject: block.DefRange,
				})
			}
		case schema.NestingList:
			if len(instances) < nestedSchema.MinItems {
				errs = append(errs, &Error{
					Path:    path + "." + name,
					Message: fmt.Sprintf("At least %d %s block(s) required, found %d", nestedSchema.MinItems, name, len(instances)),
					Subject: block.DefRange,
				})
			}
			if nestedSchema.MaxItems > 0 && len(instances) > nestedSchema.MaxItems {
				errs = append(errs, &Error{
					Path:    path + "." + name,
					Message: fmt.Sprintf("At most %d %s block(s) allowed, found %d", nestedSchema.MaxItems, name, len(instances)),
					Subject: instances[nestedSchema.MaxItems].DefRange,
				})
			}
		}

		for i, instance := range instances {
			childPath := path + "." + name
			if len(instances) > 1 {
				childPath = fmt.Sprintf("%s.%s[%d]", path, name, i)
			}
			errs = append(errs, v.validateBlock(childPath, instance, nestedSchema.Block)...)
		}
	}

	for _, nb := range block.Nested {
		if _, known := blockSchema.BlockTypes[nb.Type]; !known {
			errs = append(errs, &Error{
				Path:    path,
				Message: "Unknown block type: " + nb.Type,
				Subject: nb.DefRange,
			})
		}
	}

	return errs
}
