package foundry

// Export renders the configuration as plain maps suitable for JSON encoding.
// With redactSensitive set, values of sensitive variables are replaced by
// RedactedPlaceholder.
func (c *Config) Export(redactSensitive bool) map[string]interface{} {
	out := make(map[string]interface{})

	if c.Runtime != nil {
		rt := map[string]interface{}{}
		if c.Runtime.RequiredVersion != "" {
			rt["required_version"] = c.Runtime.RequiredVersion
		}
		for k, v := range c.Runtime.Extra {
			rt[k] = v
		}
		out["runtime"] = rt
	}

	variables := make(map[string]interface{}, len(c.Variables))
	for name, v := range c.Variables {
		value := v.Value
		if redactSensitive && v.Sensitive {
			value = RedactedPlaceholder
		}
		entry := map[string]interface{}{
			"type":   v.Type,
			"value":  value,
			"source": v.Source.String(),
		}
		if v.Description != "" {
			entry["description"] = v.Description
		}
		if v.Sensitive {
			entry["sensitive"] = true
		}
		variables[name] = entry
	}
	out["variables"] = variables

	models := make(map[string]interface{}, len(c.Models))
	for id, m := range c.Models {
		entry := map[string]interface{}{
			"provider": m.Provider,
			"name":     m.Name,
		}
		if m.Settings != nil {
			settings := map[string]interface{}{}
			if m.Settings.Temperature != nil {
				settings["temperature"] = *m.Settings.Temperature
			}
			if m.Settings.MaxTokens != nil {
				settings["max_tokens"] = *m.Settings.MaxTokens
			}
			if m.Settings.TopP != nil {
				settings["top_p"] = *m.Settings.TopP
			}
			if m.Settings.RepeatPenalty != nil {
				settings["repeat_penalty"] = *m.Settings.RepeatPenalty
			}
			entry["settings"] = settings
		}
		for k, v := range m.Extra {
			entry[k] = v
		}
		models[id] = entry
	}
	out["models"] = models

	plugins := make(map[string]interface{}, len(c.Plugins))
	for key, p := range c.Plugins {
		entry := map[string]interface{}{
			"kind":   p.Kind,
			"name":   p.Name,
			"source": p.Source,
		}
		if p.Version != "" {
			entry["version"] = p.Version
		}
		if len(p.Variables) > 0 {
			entry["variables"] = p.Variables
		}
		plugins[key] = entry
	}
	out["plugins"] = plugins

	agents := make(map[string]interface{}, len(c.Agents))
	for id, a := range c.Agents {
		entry := map[string]interface{}{
			"name":          a.Name,
			"system_prompt": a.SystemPrompt,
		}
		if a.Description != "" {
			entry["description"] = a.Description
		}
		if a.Model != nil {
			entry["model"] = a.Model.ID
		}
		if len(a.Plugins) > 0 {
			keys := make([]string, len(a.Plugins))
			for i, p := range a.Plugins {
				keys[i] = p.Key()
			}
			entry["plugins"] = keys
		}
		agents[id] = entry
	}
	out["agents"] = agents

	return out
}
