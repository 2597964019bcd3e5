package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/hcl"
	"github.com/vk/objforge/internal/registry"
	"github.com/vk/objforge/internal/yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath   string
	DefaultsPath string
	ResolveNone  bool
	LogLevel     string
	LogFormat    string
	PrintResult  bool
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := NewRegistry(modules...)
	logger.Debug("Registry populated.", "modules", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run loads the configured tree (and optional defaults tree), executes the
// pipeline, and prints the resulting object ids when asked to.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tree, err := a.loadTree(ctx, a.config.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration tree: %w", err)
	}

	opts := Options{ResolveNone: a.config.ResolveNone, Registry: a.registry}
	if a.config.DefaultsPath != "" {
		defaults, err := a.loadTree(ctx, a.config.DefaultsPath)
		if err != nil {
			return fmt.Errorf("loading defaults tree: %w", err)
		}
		opts.Defaults = defaults
	}

	st, err := Run(ctx, tree, opts)
	if err != nil {
		return err
	}
	a.logger.Info("Build finished.", "objects", st.Len())

	if a.config.PrintResult {
		for _, id := range st.IDs() {
			obj, _ := st.Get(id)
			fmt.Fprintf(a.outW, "%s: %v\n", id, obj)
		}
	}
	return nil
}

// loadTree picks the loader for a path by extension: .hcl is HCL, .yaml/.yml
// is YAML. For a directory, whichever format has files present wins, HCL
// first.
func (a *App) loadTree(ctx context.Context, path string) (*config.Tree, error) {
	loader, err := pickLoader(path)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, path)
}

func pickLoader(path string) (config.Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		if hasFiles(path, hcl.Extension) {
			return hcl.NewLoader(), nil
		}
		for _, ext := range yaml.Extensions {
			if hasFiles(path, ext) {
				return yaml.NewLoader(), nil
			}
		}
		return nil, fmt.Errorf("no tree files found under %s", path)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case hcl.Extension:
		return hcl.NewLoader(), nil
	case ".yaml", ".yml":
		return yaml.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported tree file extension %q", ext)
	}
}

func hasFiles(dir, ext string) bool {
	found, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err == nil && len(found) > 0 {
		return true
	}
	// Fall back to a recursive look; trees may live in subdirectories.
	matches, err := filepathWalkMatch(dir, ext)
	return err == nil && matches
}

func filepathWalkMatch(dir, ext string) (bool, error) {
	found := false
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found, err
}
