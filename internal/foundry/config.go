package foundry

import (
	"strings"

	"github.com/vk/agentfoundry/internal/vars"
)

// RedactedPlaceholder replaces sensitive values in exported output.
const RedactedPlaceholder = "(sensitive)"

// Config is the fully resolved configuration. Plugins are keyed "kind:name".
type Config struct {
	Runtime   *RuntimeSettings
	Variables map[string]*VariableValue
	Models    map[string]*ModelDef
	Plugins   map[string]*PluginDef
	Agents    map[string]*AgentDef
}

// RuntimeSettings carries the runtime block's attributes.
type RuntimeSettings struct {
	RequiredVersion string
	Extra           map[string]interface{}
}

// VersionSatisfied reports whether an engine version satisfies the
// required_version constraint: an exact match, or a dotted prefix so that
// "1.2" accepts "1.2.3". An empty constraint accepts everything.
func (r *RuntimeSettings) VersionSatisfied(version string) bool {
	if r == nil || r.RequiredVersion == "" {
		return true
	}
	required := strings.TrimPrefix(r.RequiredVersion, "v")
	version = strings.TrimPrefix(version, "v")
	if required == version {
		return true
	}
	return strings.HasPrefix(version, required+".")
}

// VariableValue is a variable's effective value with its provenance.
type VariableValue struct {
	Name        string
	Type        string
	Description string
	Sensitive   bool
	Value       interface{}
	Source      vars.Source
}

// ModelDef is one model block. Extra holds attributes beyond the well-known
// ones, preserved for custom schemas.
type ModelDef struct {
	ID       string
	Provider string
	Name     string
	Settings *ModelSettings
	Extra    map[string]interface{}
}

// ModelSettings holds the model's nested settings block. Nil pointers mean
// the attribute was not set.
type ModelSettings struct {
	Temperature   *float64
	MaxTokens     *int
	TopP          *float64
	RepeatPenalty *float64
}

// PluginDef is one plugin block, local or remote.
type PluginDef struct {
	Kind      string
	Name      string
	Source    string
	Version   string
	Variables map[string]interface{}
}

// Key returns the plugin's map key, "kind:name".
func (p *PluginDef) Key() string {
	return p.Kind + ":" + p.Name
}

// AgentDef is one agent block with its references bound.
type AgentDef struct {
	ID           string
	Name         string
	Description  string
	SystemPrompt string
	Model        *ModelDef
	Plugins      []*PluginDef
}
