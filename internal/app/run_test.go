package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
runtime {
  required_version = "0.1"
}

variable "provider" {
  type    = string
  default = "ollama"
}

variable "api_token" {
  type      = string
  sensitive = true
  default   = "s3cret"
}

model "assistant" {
  provider = var.provider
  name     = "llama3"
}

agent "helper" {
  name          = "Helper"
  system_prompt = "You run on ${model.assistant.name}."
  model         = model.assistant
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func runApp(t *testing.T, config Config) (*bytes.Buffer, error) {
	t.Helper()
	cfg, err := NewConfig(config)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	a := NewApp(out, logs, cfg)
	return out, a.Run(context.Background())
}

func decodeOutput(t *testing.T, out *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	return decoded
}

func TestRun_ResolvesDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "agent.hcl", testConfig)
	// Var override files in the tree are only consumed via -var-file.
	writeFile(t, dir, "ignored.var.hcl", `provider = "openai"`)

	out, err := runApp(t, Config{ConfigPath: dir})
	require.NoError(t, err)

	decoded := decodeOutput(t, out)
	models := decoded["models"].(map[string]interface{})
	assistant := models["assistant"].(map[string]interface{})
	assert.Equal(t, "ollama", assistant["provider"])

	agents := decoded["agents"].(map[string]interface{})
	helper := agents["helper"].(map[string]interface{})
	assert.Equal(t, "You run on llama3.", helper["system_prompt"])
	assert.Equal(t, "assistant", helper["model"])
}

func TestRun_SensitiveValuesRedacted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "agent.hcl", testConfig)

	out, err := runApp(t, Config{ConfigPath: dir})
	require.NoError(t, err)

	decoded := decodeOutput(t, out)
	variables := decoded["variables"].(map[string]interface{})
	token := variables["api_token"].(map[string]interface{})
	assert.Equal(t, "(sensitive)", token["value"])
	assert.NotContains(t, out.String(), "s3cret")
}

func TestRun_VarFileAndCLIVars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "agent.hcl", testConfig)
	varFile := writeFile(t, dir, "prod.var.hcl", `provider = "anthropic"`)

	t.Run("var file overrides default", func(t *testing.T) {
		out, err := runApp(t, Config{ConfigPath: configPath, VarFiles: []string{varFile}})
		require.NoError(t, err)

		decoded := decodeOutput(t, out)
		variables := decoded["variables"].(map[string]interface{})
		provider := variables["provider"].(map[string]interface{})
		assert.Equal(t, "anthropic", provider["value"])
		assert.Equal(t, "var file", provider["source"])
	})

	t.Run("cli var beats var file", func(t *testing.T) {
		out, err := runApp(t, Config{
			ConfigPath: configPath,
			VarFiles:   []string{varFile},
			Vars:       []string{"provider=openai"},
		})
		require.NoError(t, err)

		decoded := decodeOutput(t, out)
		variables := decoded["variables"].(map[string]interface{})
		provider := variables["provider"].(map[string]interface{})
		assert.Equal(t, "openai", provider["value"])
		assert.Equal(t, "command line", provider["source"])
	})
}

func TestRun_EnvFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "agent.hcl", testConfig)
	envFile := writeFile(t, dir, "test.env", "AGENT_VAR_PROVIDER=anthropic\n")

	out, err := runApp(t, Config{ConfigPath: configPath, EnvFile: envFile})
	require.NoError(t, err)

	decoded := decodeOutput(t, out)
	variables := decoded["variables"].(map[string]interface{})
	provider := variables["provider"].(map[string]interface{})
	assert.Equal(t, "anthropic", provider["value"])
	assert.Equal(t, "environment", provider["source"])
}

func TestRun_EnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "agent.hcl", testConfig)

	t.Setenv("AGENT_VAR_PROVIDER", "openai")

	out, err := runApp(t, Config{ConfigPath: configPath})
	require.NoError(t, err)

	decoded := decodeOutput(t, out)
	variables := decoded["variables"].(map[string]interface{})
	provider := variables["provider"].(map[string]interface{})
	assert.Equal(t, "openai", provider["value"])
}

func TestRun_WarnsOnUndeclaredOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "agent.hcl", testConfig)

	cfg, err := NewConfig(Config{
		ConfigPath: configPath,
		Vars:       []string{"provider=openai", "no_such_variable=1"},
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	a := NewApp(out, logs, cfg)
	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, logs.String(), "Override targets an undeclared variable.")
	assert.Contains(t, logs.String(), "no_such_variable")
	assert.NotContains(t, logs.String(), "variable=provider")
}

func TestRun_CustomSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "server.hcl", `
server "api" {
  port = 8080
}
`)
	schemaPath := writeFile(t, dir, "schema.yaml", `
schemas:
  server:
    attributes:
      port:
        type: number
        required: true
`)

	out, err := runApp(t, Config{ConfigPath: configPath, SchemaPath: schemaPath})
	require.NoError(t, err)
	assert.NotEmpty(t, out.String())
}

func TestRun_OutputNone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := writeFile(t, dir, "agent.hcl", testConfig)

	out, err := runApp(t, Config{ConfigPath: configPath, Output: OutputNone})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing path", func(t *testing.T) {
		_, err := runApp(t, Config{ConfigPath: "does-not-exist"})
		require.Error(t, err)
	})

	t.Run("no hcl files", func(t *testing.T) {
		_, err := runApp(t, Config{ConfigPath: t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no .hcl configuration files")
	})

	t.Run("validation error surfaces", func(t *testing.T) {
		dir := t.TempDir()
		configPath := writeFile(t, dir, "agent.hcl", `
model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    temperature = 1.5
  }
}
`)
		_, err := runApp(t, Config{ConfigPath: configPath})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Temperature must be between 0 and 1")
	})
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{ConfigPath: "agent.hcl"})
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, cfg.Output)
}
