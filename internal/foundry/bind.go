package foundry

import (
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/agentfoundry/internal/ctyval"
	"github.com/vk/agentfoundry/internal/resolver"
)

// buildConfig maps resolved blocks into typed definitions and binds every
// cross-block reference to a pointer.
func buildConfig(result *resolver.Result) (*Config, error) {
	cfg := &Config{
		Variables: make(map[string]*VariableValue, len(result.Variables)),
		Models:    make(map[string]*ModelDef, len(result.Models)),
		Plugins:   make(map[string]*PluginDef, len(result.Plugins)),
		Agents:    make(map[string]*AgentDef, len(result.Agents)),
	}

	if result.Runtime != nil {
		cfg.Runtime = buildRuntime(result.Runtime)
	}
	for name, v := range result.Variables {
		cfg.Variables[name] = &VariableValue{
			Name:        v.Name,
			Type:        v.Type,
			Description: v.Description,
			Sensitive:   v.Sensitive,
			Value:       ctyval.ToGo(v.Value),
			Source:      v.Source,
		}
	}
	for id, block := range result.Models {
		cfg.Models[id] = buildModel(id, block)
	}
	for key, block := range result.Plugins {
		cfg.Plugins[key] = buildPlugin(block)
	}

	// Agents last: their references bind against the maps above.
	agentIDs := make([]string, 0, len(result.Agents))
	for id := range result.Agents {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)
	for _, id := range agentIDs {
		agent, err := buildAgent(id, result.Agents[id], cfg)
		if err != nil {
			return nil, err
		}
		cfg.Agents[id] = agent
	}

	return cfg, nil
}

func buildRuntime(block *resolver.Block) *RuntimeSettings {
	rt := &RuntimeSettings{}
	for name, val := range block.Attrs {
		if name == "required_version" && val.Type() == cty.String {
			rt.RequiredVersion = val.AsString()
			continue
		}
		if rt.Extra == nil {
			rt.Extra = make(map[string]interface{})
		}
		rt.Extra[name] = ctyval.ToGo(val)
	}
	return rt
}

func buildModel(id string, block *resolver.Block) *ModelDef {
	def := &ModelDef{ID: id}
	for name, val := range block.Attrs {
		switch {
		case name == "provider" && val.Type() == cty.String:
			def.Provider = val.AsString()
		case name == "name" && val.Type() == cty.String:
			def.Name = val.AsString()
		default:
			if def.Extra == nil {
				def.Extra = make(map[string]interface{})
			}
			def.Extra[name] = ctyval.ToGo(val)
		}
	}
	if settings := block.NestedOfType("settings"); len(settings) > 0 {
		def.Settings = buildModelSettings(settings[0])
	}
	return def
}

func buildModelSettings(block *resolver.Block) *ModelSettings {
	s := &ModelSettings{}
	for name, val := range block.Attrs {
		if val.IsNull() || val.Type() != cty.Number {
			continue
		}
		switch name {
		case "temperature":
			f := ctyval.NumberFloat(val)
			s.Temperature = &f
		case "max_tokens":
			n := ctyval.NumberInt(val)
			s.MaxTokens = &n
		case "top_p":
			f := ctyval.NumberFloat(val)
			s.TopP = &f
		case "repeat_penalty":
			f := ctyval.NumberFloat(val)
			s.RepeatPenalty = &f
		}
	}
	return s
}

func buildPlugin(block *resolver.Block) *PluginDef {
	def := &PluginDef{Kind: block.Labels[0], Name: block.Labels[1]}
	for name, val := range block.Attrs {
		switch {
		case name == "source" && val.Type() == cty.String:
			def.Source = val.AsString()
		case name == "version" && val.Type() == cty.String:
			def.Version = val.AsString()
		case name == "variables":
			if m, ok := ctyval.ToGo(val).(map[string]interface{}); ok {
				def.Variables = m
			}
		}
	}
	return def
}

func buildAgent(id string, block *resolver.Block, cfg *Config) (*AgentDef, error) {
	def := &AgentDef{ID: id}
	for name, val := range block.Attrs {
		if val.Type() == cty.String {
			switch name {
			case "name":
				def.Name = val.AsString()
			case "description":
				def.Description = val.AsString()
			case "system_prompt":
				def.SystemPrompt = val.AsString()
			}
		}
	}

	path := "agent." + id
	if modelRef := block.Attr("model"); modelRef != cty.NilVal && !modelRef.IsNull() {
		model, err := bindModelRef(path+".model", modelRef, cfg)
		if err != nil {
			return nil, err
		}
		def.Model = model
	}
	if pluginsRef := block.Attr("plugins"); pluginsRef != cty.NilVal && !pluginsRef.IsNull() {
		plugins, err := bindPluginRefs(path+".plugins", pluginsRef, cfg)
		if err != nil {
			return nil, err
		}
		def.Plugins = plugins
	}
	return def, nil
}

// bindModelRef accepts the resolved model object (carrying its identity),
// a dotted string "model.id", or a bare id.
func bindModelRef(path string, val cty.Value, cfg *Config) (*ModelDef, error) {
	var id string
	switch {
	case val.Type().IsObjectType():
		id = identityAttr(val, "id")
	case val.Type() == cty.String:
		id = strings.TrimPrefix(val.AsString(), "model.")
	}
	if model, ok := cfg.Models[id]; ok && id != "" {
		return model, nil
	}
	return nil, &UnresolvedReferenceError{Path: path, Target: ctyval.FormatForDisplay(val)}
}

// bindPluginRefs accepts a list whose elements are resolved plugin objects,
// dotted strings "plugin.kind.name", or "kind:name" pairs.
func bindPluginRefs(path string, val cty.Value, cfg *Config) ([]*PluginDef, error) {
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, &UnresolvedReferenceError{Path: path, Target: ctyval.FormatForDisplay(val)}
	}
	var out []*PluginDef
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		var key string
		switch {
		case elem.Type().IsObjectType():
			kind := identityAttr(elem, "kind")
			name := identityAttr(elem, "name")
			if kind != "" && name != "" {
				key = kind + ":" + name
			}
		case elem.Type() == cty.String:
			s := strings.TrimPrefix(elem.AsString(), "plugin.")
			if kind, name, ok := strings.Cut(s, ":"); ok {
				key = kind + ":" + name
			} else if kind, name, ok := strings.Cut(s, "."); ok {
				key = kind + ":" + name
			}
		}
		plugin, ok := cfg.Plugins[key]
		if !ok || key == "" {
			return nil, &UnresolvedReferenceError{Path: path, Target: ctyval.FormatForDisplay(elem)}
		}
		out = append(out, plugin)
	}
	return out, nil
}

func identityAttr(obj cty.Value, name string) string {
	if !obj.Type().HasAttribute(name) {
		return ""
	}
	attr := obj.GetAttr(name)
	if attr.IsNull() || attr.Type() != cty.String {
		return ""
	}
	return attr.AsString()
}
