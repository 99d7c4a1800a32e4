package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/agentfoundry/internal/document"
	"github.com/vk/agentfoundry/internal/resolver"
	"github.com/vk/agentfoundry/internal/schema"
	"github.com/vk/agentfoundry/internal/vars"
)

// resolveSrc runs a full resolution pass over one source file so validation
// sees real resolved blocks.
func resolveSrc(t *testing.T, src string) *resolver.Result {
	t.Helper()
	doc, err := document.Parse("test.hcl", []byte(src))
	require.NoError(t, err)
	corpus, err := document.Merge(doc)
	require.NoError(t, err)
	r, err := resolver.New(corpus, vars.NewStore())
	require.NoError(t, err)
	result, err := r.ResolveAll(context.Background())
	require.NoError(t, err)
	return result
}

func validateSrc(t *testing.T, src string) error {
	t.Helper()
	return New(schema.Builtin()).Validate(resolveSrc(t, src))
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
runtime {
  required_version = "0.1"
}

variable "temperature" {
  type    = number
  default = 0.7
}

model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    temperature = var.temperature
    max_tokens  = 4096
  }
}

plugin "local" "search" {
  source = "./plugins/search"
}

plugin "remote" "weather" {
  source  = "github.com/acme/weather-plugin"
  version = "v1.2.0"
}

agent "helper" {
  name          = "Helper"
  system_prompt = "You are helpful."
  model         = model.assistant
  plugins       = [plugin.local.search, plugin.remote.weather]
}
`)
	assert.NoError(t, err)
}

func TestValidate_RangeRule(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    temperature = 1.5
  }
}
`)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "model.assistant.settings.temperature", errs[0].Path)
	assert.Equal(t, "Temperature must be between 0 and 1", errs[0].Message)
}

func TestValidate_MaxTokensRule(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    max_tokens = 0
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum tokens must be at least 1")
}

func TestValidate_ProviderOptions(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
model "assistant" {
  provider = "bedrock"
  name     = "titan"
}
`)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "model.assistant.provider", errs[0].Path)
	assert.Equal(t, "Model provider must be 'openai', 'anthropic', or 'ollama'", errs[0].Message)
}

func TestValidate_RequiredAndUnknownAttributes(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
model "assistant" {
  provider = "ollama"
  flavour  = "spicy"
}
`)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 2)
	assert.Equal(t, "Required attribute missing: name", errs[0].Message)
	assert.Equal(t, "Unknown attribute: flavour", errs[1].Message)
}

func TestValidate_TypeKeyword(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    temperature = "hot"
  }
}
`)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "Expected type number", errs[0].Message)
}

func TestValidate_SingleNestingViolated(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    temperature = 0.1
  }

  settings {
    temperature = 0.2
  }
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Multiple blocks not allowed (nesting_mode=single)")
}

func TestValidate_SingleNestingRequired(t *testing.T) {
	t.Parallel()

	src := `{
  "schemas": {
    "model": {
      "attributes": {
        "provider": {"type": "string"},
        "name": {"type": "string"}
      },
      "block_types": {
        "settings": {
          "nesting_mode": "single",
          "min_items": 1,
          "block": {
            "attributes": {
              "temperature": {"type": "number"}
            }
          }
        }
      }
    }
  }
}`
	registry, err := schema.ParseJSON([]byte(src))
	require.NoError(t, err)

	t.Run("missing mandatory single block", func(t *testing.T) {
		result := resolveSrc(t, `
model "assistant" {
  provider = "ollama"
  name     = "llama3"
}
`)
		err := New(registry).Validate(result)
		require.Error(t, err)

		var errs Errors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, "model.assistant.settings", errs[0].Path)
		assert.Equal(t, "Required block missing: settings", errs[0].Message)
	})

	t.Run("present single block passes", func(t *testing.T) {
		result := resolveSrc(t, `
model "assistant" {
  provider = "ollama"
  name     = "llama3"

  settings {
    temperature = 0.7
  }
}
`)
		assert.NoError(t, New(registry).Validate(result))
	})
}

func TestValidate_NestedBlockInVariable(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
variable "a" {
  type    = string
  default = "x"

  bogus {
    y = 1
  }
}
`)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "variable.a", errs[0].Path)
	assert.Equal(t, "Unknown block type: bogus", errs[0].Message)
}

func TestValidate_RemoteVsLocalPluginShape(t *testing.T) {
	t.Parallel()

	t.Run("remote requires version", func(t *testing.T) {
		err := validateSrc(t, `
plugin "remote" "weather" {
  source = "github.com/acme/weather-plugin"
}
`)
		require.Error(t, err)

		var errs Errors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, "plugin.remote.weather", errs[0].Path)
		assert.Equal(t, "Required attribute missing: version", errs[0].Message)
	})

	t.Run("remote version must be semver", func(t *testing.T) {
		err := validateSrc(t, `
plugin "remote" "weather" {
  source  = "github.com/acme/weather-plugin"
  version = "latest"
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Remote plugin version must be a semantic version")
	})

	t.Run("local needs no version", func(t *testing.T) {
		err := validateSrc(t, `
plugin "local" "search" {
  source = "./plugins/search"
}
`)
		assert.NoError(t, err)
	})

	t.Run("local source must be a path", func(t *testing.T) {
		err := validateSrc(t, `
plugin "local" "search" {
  source = "github.com/acme/search"
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Local plugin source must be a filesystem path")
	})
}

func TestValidate_VariableType(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
variable "broken" {
  type    = "integer"
  default = 1
}
`)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "variable.broken.type", errs[0].Path)
	assert.Equal(t, "Invalid variable type", errs[0].Message)
}

func TestValidate_UnknownBlockType(t *testing.T) {
	t.Parallel()

	err := validateSrc(t, `
widget "spinner" {
  speed = 3
}
`)
	require.Error(t, err)

	var unknown *schema.UnknownBlockTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "widget", unknown.BlockType)
}

func TestValidate_CustomRegistry(t *testing.T) {
	t.Parallel()

	src := `{
  "schemas": {
    "server": {
      "attributes": {
        "port": {
          "type": "number",
          "required": true,
          "validation": [{"range": {"min": 1, "max": 65535}}]
        }
      }
    }
  }
}`
	registry, err := schema.ParseJSON([]byte(src))
	require.NoError(t, err)

	result := resolveSrc(t, `
server "api" {
  port = 70000
}
`)
	err = New(registry).Validate(result)
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, "server.api.port", errs[0].Path)
	assert.Equal(t, "Value must be between 1 and 65535", errs[0].Message)
}
