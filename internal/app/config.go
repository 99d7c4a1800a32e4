package app

import "errors"

// Output modes for the resolved configuration.
const (
	OutputJSON = "json"
	OutputNone = "none"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // .hcl file or directory
	SchemaPath string // optional JSON/YAML schema registry; empty selects the builtin

	Vars     []string // raw name=value assignments, highest precedence
	VarFiles []string // .hcl or .json var files
	EnvFile  string   // optional .env file feeding AGENT_VAR_ overrides

	LogFormat string
	LogLevel  string
	Output    string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Output == "" {
		cfg.Output = OutputJSON
	}
	return &cfg, nil
}
