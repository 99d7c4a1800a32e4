package schema

import (
	"sort"
	"strings"
)

// Registry answers "what shape is legal for block type X with label path L".
// It is immutable after construction.
type Registry struct {
	entries map[string]*Block
}

// NewRegistry builds a registry from entries keyed by "type" or
// "type.label1" or "type.label1.label2".
func NewRegistry(entries map[string]*Block) *Registry {
	copied := make(map[string]*Block, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Registry{entries: copied}
}

// Lookup returns the most specific schema for a block: an exact
// (type, labels) entry wins over a (type, firstLabel) entry, which wins over
// a bare (type) entry.
func (r *Registry) Lookup(blockType string, labels []string) (*Block, bool) {
	if len(labels) > 0 {
		exact := blockType + "." + strings.Join(labels, ".")
		if b, ok := r.entries[exact]; ok {
			return b, true
		}
		if first, ok := r.entries[blockType+"."+labels[0]]; ok {
			return first, true
		}
	}
	b, ok := r.entries[blockType]
	return b, ok
}

// BlockTypes returns the distinct top-level block types the registry knows,
// sorted for deterministic iteration.
func (r *Registry) BlockTypes() []string {
	seen := make(map[string]struct{})
	for key := range r.entries {
		base, _, _ := strings.Cut(key, ".")
		seen[base] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
