package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vk/agentfoundry/internal/ctxlog"
	"github.com/vk/agentfoundry/internal/document"
	"github.com/vk/agentfoundry/internal/foundry"
	"github.com/vk/agentfoundry/internal/fsutil"
	"github.com/vk/agentfoundry/internal/schema"
	"github.com/vk/agentfoundry/internal/vars"
)

// Run executes one full resolution pass: collect variables, parse every
// configuration file, resolve, and render the result.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	store, err := a.buildStore()
	if err != nil {
		return err
	}

	registry, err := a.loadRegistry()
	if err != nil {
		return err
	}

	docs, err := a.loadDocuments()
	if err != nil {
		return err
	}

	config, err := foundry.Resolve(ctx, foundry.Options{
		Documents: docs,
		Registry:  registry,
		Store:     store,
	})
	if err != nil {
		return err
	}
	a.logger.Info("Configuration resolved.",
		"variables", len(config.Variables),
		"models", len(config.Models),
		"plugins", len(config.Plugins),
		"agents", len(config.Agents))

	for _, name := range store.Names() {
		if _, declared := config.Variables[name]; !declared {
			a.logger.Warn("Override targets an undeclared variable.", "variable", name)
		}
	}

	if config.Runtime != nil && !config.Runtime.VersionSatisfied(Version) {
		a.logger.Warn("Engine version does not satisfy required_version.",
			"required", config.Runtime.RequiredVersion, "version", Version)
	}

	if a.config.Output == OutputJSON {
		encoded, err := json.MarshalIndent(config.Export(true), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding resolved configuration: %w", err)
		}
		fmt.Fprintln(a.outW, string(encoded))
	}
	return nil
}

// buildStore collects variable overrides from every source. Entries from a
// -env-file never shadow the real process environment.
func (a *App) buildStore() (*vars.Store, error) {
	store := vars.NewStore()

	if a.config.EnvFile != "" {
		pairs, err := godotenv.Read(a.config.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", a.config.EnvFile, err)
		}
		environ := make([]string, 0, len(pairs))
		for key, value := range pairs {
			environ = append(environ, key+"="+value)
		}
		store.AddEnviron(environ)
		a.logger.Debug("Env file loaded.", "path", a.config.EnvFile, "entries", len(pairs))
	}
	store.AddEnviron(os.Environ())

	for _, path := range a.config.VarFiles {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading var file %s: %w", path, err)
		}
		values, err := vars.ParseVarFile(path, src)
		if err != nil {
			return nil, err
		}
		store.AddFileValues(values)
		a.logger.Debug("Var file loaded.", "path", path, "variables", len(values))
	}

	for _, assignment := range a.config.Vars {
		if err := store.AddCLIVar(assignment); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// loadRegistry reads the schema registry named by -schema, or falls back to
// the builtin agent language schema.
func (a *App) loadRegistry() (*schema.Registry, error) {
	if a.config.SchemaPath == "" {
		a.logger.Debug("Using builtin schema registry.")
		return schema.Builtin(), nil
	}
	src, err := os.ReadFile(a.config.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", a.config.SchemaPath, err)
	}
	switch strings.ToLower(filepath.Ext(a.config.SchemaPath)) {
	case ".yaml", ".yml":
		return schema.ParseYAML(src)
	default:
		return schema.ParseJSON(src)
	}
}

func (a *App) loadDocuments() ([]*document.Document, error) {
	files, err := fsutil.FindConfigFiles(a.config.ConfigPath, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl configuration files found at %s", a.config.ConfigPath)
	}
	a.logger.Debug("Configuration files discovered.", "count", len(files))

	docs := make([]*document.Document, 0, len(files))
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		doc, err := document.Parse(file, src)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
