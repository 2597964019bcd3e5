// Package yaml loads configuration trees from YAML files. Mappings are
// decoded in document order so a default section's first sub-configuration
// is the one written first.
package yaml

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/fsutil"
)

// Extensions are the file extensions the loader picks up when given a
// directory.
var Extensions = []string{".yaml", ".yml"}

// Loader implements config.Loader for YAML tree files.
type Loader struct{}

// NewLoader creates a YAML tree loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads one file or every YAML file under a directory (in sorted path
// order) and merges them into a single tree.
func (l *Loader) Load(ctx context.Context, path string) (*config.Tree, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loading YAML tree files.", "path", path, "count", len(files))

	tree := config.NewTree()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := l.translateFile(tree, data); err != nil {
			return nil, fmt.Errorf("translating %s: %w", file, err)
		}
	}
	return tree, nil
}

// translateFile folds one YAML document into the tree, preserving the
// document's section and sub-configuration order.
func (l *Loader) translateFile(tree *config.Tree, data []byte) error {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	top, ok := doc.(yaml.MapSlice)
	if !ok {
		return fmt.Errorf("document root must be a mapping, got %T", doc)
	}

	for _, item := range top {
		sectionID, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("non-string section key %v", item.Key)
		}
		if sectionID == config.KeyGlobal {
			glob, err := plainMap(item.Value)
			if err != nil {
				return fmt.Errorf("tree-level global: %w", err)
			}
			if tree.Global == nil {
				tree.Global = make(map[string]any)
			}
			for k, v := range glob {
				tree.Global[k] = v
			}
			continue
		}

		rawSection, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return &config.StructureError{Section: sectionID, Detail: "section must be a mapping of sub-configurations"}
		}
		section := tree.Section(sectionID)
		for _, entry := range rawSection {
			configID, ok := entry.Key.(string)
			if !ok {
				return fmt.Errorf("section %s: non-string key %v", sectionID, entry.Key)
			}
			if configID == config.KeyGlobal {
				glob, err := plainMap(entry.Value)
				if err != nil {
					return fmt.Errorf("section %s global: %w", sectionID, err)
				}
				section.Global = glob
				continue
			}
			rawConf, err := plainMap(entry.Value)
			if err != nil {
				return &config.StructureError{Section: sectionID, Config: configID, Detail: "sub-configuration must be a mapping"}
			}
			conf, err := config.DecodeRawSubConfig(sectionID, configID, rawConf)
			if err != nil {
				return err
			}
			if _, exists := section.Get(configID); exists {
				return fmt.Errorf("config %s__%s defined more than once", sectionID, configID)
			}
			section.Set(configID, conf)
		}
	}
	return nil
}

// plain converts ordered-map decoding output into the engine's plain shapes.
func plain(v any) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		out := make(map[string]any, len(val))
		for _, item := range val {
			out[fmt.Sprint(item.Key)] = plain(item.Value)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = plain(e)
		}
		return out
	case int64:
		return int(val)
	case uint64:
		return int(val)
	default:
		return v
	}
}

func plainMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := plain(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not a mapping: %T", v)
	}
	return m, nil
}

func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	for _, ext := range Extensions {
		found, err := fsutil.FindFilesByExtension(path, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found under %s", strings.Join(Extensions, "/"), path)
	}
	sort.Strings(files)
	return files, nil
}
