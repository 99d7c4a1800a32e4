package foundry

import (
	"context"

	"github.com/vk/agentfoundry/internal/ctxlog"
	"github.com/vk/agentfoundry/internal/document"
	"github.com/vk/agentfoundry/internal/resolver"
	"github.com/vk/agentfoundry/internal/schema"
	"github.com/vk/agentfoundry/internal/validate"
	"github.com/vk/agentfoundry/internal/vars"
)

// Options configures one resolution pass.
type Options struct {
	// Documents are the parsed configuration files to merge.
	Documents []*document.Document
	// Registry validates the resolved blocks; nil selects the builtin agent
	// language schema.
	Registry *schema.Registry
	// Store supplies variable overrides; nil means no overrides, so every
	// variable must declare a default.
	Store *vars.Store
}

// Resolve runs the full pipeline: merge, expression resolution, schema
// validation, reference binding. No partially resolved Config ever escapes;
// any error aborts the pass.
func Resolve(ctx context.Context, opts Options) (*Config, error) {
	logger := ctxlog.FromContext(ctx)

	registry := opts.Registry
	if registry == nil {
		registry = schema.Builtin()
	}
	store := opts.Store
	if store == nil {
		store = vars.NewStore()
	}

	corpus, err := document.Merge(opts.Documents...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Documents merged.", "documents", len(opts.Documents), "blocks", len(corpus.Blocks))

	res, err := resolver.New(corpus, store)
	if err != nil {
		return nil, err
	}
	result, err := res.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := validate.New(registry).Validate(result); err != nil {
		return nil, err
	}
	logger.Debug("Validation passed.")

	return buildConfig(result)
}
