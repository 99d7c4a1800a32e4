package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
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
      },
      "block_types": {
        "listener": {
          "nesting_mode": "list",
          "min_items": 1,
          "block": {
            "attributes": {
              "protocol": {"validation": [{"options": ["tcp", "udp"]}]}
            }
          }
        }
      }
    }
  }
}`
	reg, err := ParseJSON([]byte(src))
	require.NoError(t, err)

	server, ok := reg.Lookup("server", nil)
	require.True(t, ok)
	require.Contains(t, server.Attributes, "port")
	require.Len(t, server.Attributes["port"].Validation, 1)
	assert.Equal(t, 65535.0, *server.Attributes["port"].Validation[0].Range.Max)

	// An omitted attribute type defaults to any.
	listener := server.BlockTypes["listener"]
	require.NotNil(t, listener)
	assert.Equal(t, "any", listener.Block.Attributes["protocol"].Type)
	assert.Equal(t, 1, listener.MinItems)
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	src := `
schemas:
  server:
    attributes:
      host:
        type: string
        required: true
    block_types:
      listener:
        nesting_mode: single
        block:
          attributes:
            port:
              type: number
`
	reg, err := ParseYAML([]byte(src))
	require.NoError(t, err)

	server, ok := reg.Lookup("server", nil)
	require.True(t, ok)
	assert.True(t, server.Attributes["host"].Required)
	assert.Equal(t, NestingSingle, server.BlockTypes["listener"].NestingMode)
}

func TestParseJSON_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "not json",
			src:  `{`,
			want: "invalid schema document",
		},
		{
			name: "no schemas",
			src:  `{"schemas": {}}`,
			want: "declares no schemas",
		},
		{
			name: "bad attribute type",
			src:  `{"schemas": {"server": {"attributes": {"port": {"type": "integer"}}}}}`,
			want: `invalid type "integer"`,
		},
		{
			name: "rule with two constraints",
			src:  `{"schemas": {"server": {"attributes": {"port": {"type": "number", "validation": [{"range": {"min": 1}, "pattern": "x"}]}}}}}`,
			want: "exactly one of range, pattern, options",
		},
		{
			name: "bad nesting mode",
			src:  `{"schemas": {"server": {"block_types": {"listener": {"nesting_mode": "set", "block": {}}}}}}`,
			want: `invalid nesting_mode "set"`,
		},
		{
			name: "single with multiple items",
			src:  `{"schemas": {"server": {"block_types": {"listener": {"nesting_mode": "single", "max_items": 3, "block": {}}}}}}`,
			want: "single but allows more than one item",
		},
		{
			name: "min above max",
			src:  `{"schemas": {"server": {"block_types": {"listener": {"nesting_mode": "list", "min_items": 3, "max_items": 2, "block": {}}}}}}`,
			want: "min_items greater than max_items",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
