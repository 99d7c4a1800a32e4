package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vk/agentfoundry/internal/ctyval"
)

// registryDocument is the on-disk shape of a schema registry: a single
// "schemas" mapping from lookup key to block schema.
type registryDocument struct {
	Schemas map[string]*Block `json:"schemas" yaml:"schemas"`
}

// ParseJSON builds a registry from a JSON schema document.
func ParseJSON(src []byte) (*Registry, error) {
	var doc registryDocument
	if err := json.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	return fromDocument(&doc)
}

// ParseYAML builds a registry from a YAML schema document with the same
// structure as the JSON form.
func ParseYAML(src []byte) (*Registry, error) {
	var doc registryDocument
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	return fromDocument(&doc)
}

func fromDocument(doc *registryDocument) (*Registry, error) {
	if len(doc.Schemas) == 0 {
		return nil, fmt.Errorf("schema document declares no schemas")
	}
	for key, block := range doc.Schemas {
		if err := checkBlock(key, block); err != nil {
			return nil, err
		}
	}
	return NewRegistry(doc.Schemas), nil
}

// checkBlock rejects malformed schema data up front so validation never has
// to second-guess its own rule set.
func checkBlock(key string, block *Block) error {
	if block == nil {
		return fmt.Errorf("schema %q: empty block definition", key)
	}
	for name, attr := range block.Attributes {
		if attr == nil {
			return fmt.Errorf("schema %q: attribute %q has no definition", key, name)
		}
		if attr.Type == "" {
			attr.Type = "any"
		}
		if !ctyval.ValidKeyword(attr.Type) {
			return fmt.Errorf("schema %q: attribute %q has invalid type %q", key, name, attr.Type)
		}
		for i, rule := range attr.Validation {
			if rule == nil {
				return fmt.Errorf("schema %q: attribute %q has an empty validation rule", key, name)
			}
			set := 0
			if rule.Range != nil {
				set++
			}
			if rule.Pattern != "" {
				set++
			}
			if len(rule.Options) > 0 {
				set++
			}
			if set != 1 {
				return fmt.Errorf("schema %q: attribute %q rule %d must set exactly one of range, pattern, options", key, name, i)
			}
		}
	}
	for name, nested := range block.BlockTypes {
		if nested == nil || nested.Block == nil {
			return fmt.Errorf("schema %q: nested block %q has no definition", key, name)
		}
		switch nested.NestingMode {
		case NestingSingle:
			if nested.MinItems > 1 || nested.MaxItems > 1 {
				return fmt.Errorf("schema %q: nested block %q is single but allows more than one item", key, name)
			}
		case NestingList:
		default:
			return fmt.Errorf("schema %q: nested block %q has invalid nesting_mode %q", key, name, nested.NestingMode)
		}
		if nested.MaxItems > 0 && nested.MinItems > nested.MaxItems {
			return fmt.Errorf("schema %q: nested block %q has min_items greater than max_items", key, name)
		}
		if err := checkBlock(key+"."+name, nested.Block); err != nil {
			return err
		}
	}
	return nil
}
