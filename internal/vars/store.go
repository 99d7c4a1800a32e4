package vars

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/agentfoundry/internal/ctyval"
	"github.com/vk/agentfoundry/internal/document"
)

// EnvPrefix marks process environment entries that carry variable overrides:
// AGENT_VAR_MODEL_TEMPERATURE=0.5 overrides variable "model_temperature".
const EnvPrefix = "AGENT_VAR_"

// Source identifies where an override value came from, in precedence order.
type Source int

const (
	SourceNone Source = iota
	SourceDefault
	SourceEnv
	SourceFile
	SourceCLI
)

func (s Source) String() string {
	switch s {
	case SourceCLI:
		return "command line"
	case SourceFile:
		return "var file"
	case SourceEnv:
		return "environment"
	case SourceDefault:
		return "default"
	}
	return "unset"
}

// Store holds override values keyed by variable name. It is built once per
// resolution pass and read-only afterwards.
type Store struct {
	cliVars  map[string]cty.Value
	fileVars map[string]cty.Value
	envVars  map[string]cty.Value
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		cliVars:  make(map[string]cty.Value),
		fileVars: make(map[string]cty.Value),
		envVars:  make(map[string]cty.Value),
	}
}

// AddCLIVar records a command-line assignment of the form name=value, with
// scalar coercion applied to the value.
func (s *Store) AddCLIVar(assignment string) error {
	name, raw, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("invalid variable assignment %q, expected name=value", assignment)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("invalid variable assignment %q, name is empty", assignment)
	}
	val, err := ctyval.FromGo(ctyval.ParseScalar(strings.TrimSpace(raw)))
	if err != nil {
		return err
	}
	s.cliVars[name] = val
	return nil
}

// AddFileValues merges values loaded from a var-file. Later files win over
// earlier ones for the same name, matching the order the flags were given.
func (s *Store) AddFileValues(values map[string]cty.Value) {
	for name, val := range values {
		s.fileVars[name] = val
	}
}

// AddEnviron scans environment pairs (os.Environ form, "KEY=value") for the
// AGENT_VAR_ prefix. Names are lowercased, so AGENT_VAR_PROVIDER overrides
// variable "provider".
func (s *Store) AddEnviron(environ []string) {
	for _, pair := range environ {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if name == "" {
			continue
		}
		val, err := ctyval.FromGo(ctyval.ParseScalar(raw))
		if err != nil {
			continue
		}
		s.envVars[name] = val
	}
}

// Lookup returns the effective override for a variable, if any, together
// with the source it came from. Precedence: CLI, then var-file, then
// environment. Defaults are not the store's business.
func (s *Store) Lookup(name string) (cty.Value, Source, bool) {
	if val, ok := s.cliVars[name]; ok {
		return val, SourceCLI, true
	}
	if val, ok := s.fileVars[name]; ok {
		return val, SourceFile, true
	}
	if val, ok := s.envVars[name]; ok {
		return val, SourceEnv, true
	}
	return cty.NilVal, SourceNone, false
}

// Names returns every variable name with at least one override, sorted.
// The app uses it to warn about overrides targeting undeclared variables.
func (s *Store) Names() []string {
	seen := make(map[string]struct{})
	for name := range s.cliVars {
		seen[name] = struct{}{}
	}
	for name := range s.fileVars {
		seen[name] = struct{}{}
	}
	for name := range s.envVars {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseVarFile parses a var-file's contents. JSON files hold a flat object;
// anything else is treated as HCL restricted to top-level assignments.
func ParseVarFile(filename string, src []byte) (map[string]cty.Value, error) {
	if filepath.Ext(filename) == ".json" {
		var raw map[string]interface{}
		if err := json.Unmarshal(src, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON var file %s: %w", filename, err)
		}
		values := make(map[string]cty.Value, len(raw))
		for name, v := range raw {
			val, err := ctyval.FromGo(v)
			if err != nil {
				return nil, fmt.Errorf("var file %s: variable %q: %w", filename, name, err)
			}
			values[name] = val
		}
		return values, nil
	}

	values, err := document.ParseAttributes(filename, src)
	if err != nil {
		return nil, err
	}
	return values, nil
}
