package app

import (
	"context"
	"fmt"

	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/executor"
	"github.com/vk/objforge/internal/normalize"
	"github.com/vk/objforge/internal/registry"
	"github.com/vk/objforge/internal/resolve"
	"github.com/vk/objforge/internal/scheduler"
	"github.com/vk/objforge/internal/store"
)

// Options tunes one run of the pipeline.
type Options struct {
	// Defaults is the default tree merged under the working tree. Nil means
	// DefaultTree; pass an empty tree to merge nothing.
	Defaults *config.Tree

	// Seed pre-populates the objects store.
	Seed map[string]any

	// ResolveNone opts into reference resolution for unset step arguments.
	ResolveNone bool

	// Registry overrides the default registry (built-ins + core modules).
	Registry *registry.Registry
}

// Run resolves a tree into an ordered build plan and executes it:
// normalize, resolve globals (and references when opted in), schedule,
// execute. On a build failure the returned store still holds the objects
// completed before the failure.
func Run(ctx context.Context, tree *config.Tree, opts Options) (*store.Store, error) {
	logger := ctxlog.FromContext(ctx)

	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultTree(logger)
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	normalized, err := normalize.Apply(tree, defaults)
	if err != nil {
		return nil, fmt.Errorf("normalizing configuration: %w", err)
	}
	if err := resolve.Globals(normalized); err != nil {
		return nil, fmt.Errorf("resolving globals: %w", err)
	}
	if opts.ResolveNone {
		if err := resolve.None(normalized); err != nil {
			return nil, fmt.Errorf("resolving references: %w", err)
		}
	}
	entries, err := scheduler.Arrange(normalized)
	if err != nil {
		return nil, fmt.Errorf("scheduling configuration: %w", err)
	}
	logger.Debug("Build plan arranged.", "entries", len(entries))

	st := store.NewSeeded(opts.Seed)
	exec := executor.New(reg, st)
	if err := exec.Run(ctx, entries); err != nil {
		return st, err
	}
	return st, nil
}
