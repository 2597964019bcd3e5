// Package hcl loads configuration trees from HCL files and translates them
// into the format-agnostic model.
package hcl

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/fsutil"
	"github.com/vk/objforge/internal/schema"
)

// Extension is the file extension the loader picks up when given a
// directory.
const Extension = ".hcl"

// Loader implements config.Loader for HCL tree files.
type Loader struct{}

// NewLoader creates an HCL tree loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads one file or every .hcl file under a directory (in sorted path
// order) and merges them into a single tree.
func (l *Loader) Load(ctx context.Context, path string) (*config.Tree, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading HCL tree files.", "path", path, "count", len(files))

	parser := hclparse.NewParser()
	tree := config.NewTree()
	for _, file := range files {
		parsed, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}
		var f schema.File
		if diags := gohcl.DecodeBody(parsed.Body, nil, &f); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}
		if err := l.translateFile(tree, &f); err != nil {
			return nil, fmt.Errorf("translating %s: %w", file, err)
		}
	}
	return tree, nil
}

func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	files, err := fsutil.FindFilesByExtension(path, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found under %s", Extension, path)
	}
	sort.Strings(files)
	return files, nil
}
