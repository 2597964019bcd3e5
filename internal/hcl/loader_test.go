package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/objforge/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullTree = `
global {
  key = "b"
}

config "metrics" "accuracy" {
  producer = "map"
  priority = 2
  init = { a = 7 }

  threshold = 0.5

  global {
    key = "c"
  }

  patch {
    put = "set"
  }

  step "set" {
    key        = "b"
    val        = 42
    decorators = ["timed"]
  }

  step "print" {
    key = "b"
  }
}
`

func TestLoad_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tree.hcl", fullTree)

	tree, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, map[string]any{"key": "b"}, tree.Global)

	conf, ok := tree.Sections["metrics"].Get("accuracy")
	require.True(t, ok)
	require.Equal(t, "map", conf.Producer)
	require.Equal(t, 2, *conf.Priority)
	require.Equal(t, map[string]any{"a": 7}, conf.Init)
	require.Equal(t, map[string]any{"key": "c"}, conf.Global)
	require.Equal(t, map[string]any{"threshold": 0.5}, conf.Extra)
	require.Equal(t, map[string]any{"put": "set"}, conf.Patch)

	require.Len(t, conf.Steps, 2)
	require.Equal(t, "set", conf.Steps[0].Method)
	require.Equal(t, map[string]any{"key": "b", "val": 42}, conf.Steps[0].Kwargs)
	require.Equal(t, []any{"timed"}, conf.Steps[0].Decorators)
	require.Equal(t, "print", conf.Steps[1].Method)
}

func TestLoad_InitFactory(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tree.hcl", `
config "path" "default" {
  init_factory = "path"
}
`)

	tree, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	conf, _ := tree.Sections["path"].Get("default")
	require.Equal(t, config.SeedRef("path"), conf.Init)
}

func TestLoad_DirectoryMergesInSortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.hcl", `
config "s" "second" {}
`)
	writeFile(t, dir, "a.hcl", `
config "s" "first" {}
`)

	tree, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, tree.Sections["s"].IDs())
}

func TestLoad_DuplicateConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tree.hcl", `
config "s" "c" {}
config "s" "c" {}
`)

	_, err := NewLoader().Load(context.Background(), path)
	require.ErrorContains(t, err, "more than once")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	require.ErrorContains(t, err, "no .hcl files")
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tree.hcl", `config "s" {`)

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
}
