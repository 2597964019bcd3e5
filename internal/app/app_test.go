package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/objforge/internal/hcl"
	"github.com/vk/objforge/internal/yaml"
)

func writeTree(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApp_RunHCLTree(t *testing.T) {
	path := writeTree(t, t.TempDir(), "tree.hcl", `
config "metrics" "accuracy" {
  producer = "map"
  init     = { a = 7 }

  step "set" {
    key = "b"
    val = 42
  }
}
`)

	var out bytes.Buffer
	a := NewApp(&out, &Config{ConfigPath: path, PrintResult: true, LogLevel: "error"})
	require.NoError(t, a.Run(context.Background()))

	require.Contains(t, out.String(), "metrics__accuracy: map[a:7 b:42]")
}

func TestApp_RunYAMLTree(t *testing.T) {
	path := writeTree(t, t.TempDir(), "tree.yaml", `
metrics:
  accuracy:
    producer: map
    init:
      a: 7
`)

	var out bytes.Buffer
	a := NewApp(&out, &Config{ConfigPath: path, PrintResult: true, LogLevel: "error"})
	require.NoError(t, a.Run(context.Background()))
	require.Contains(t, out.String(), "metrics__accuracy: map[a:7]")
}

func TestApp_RunWithDefaultsTree(t *testing.T) {
	dir := t.TempDir()
	treePath := writeTree(t, dir, "tree.hcl", `
config "metrics" "accuracy" {
  init = { a = 1 }
}
`)
	defaultsPath := writeTree(t, dir, "defaults.hcl", `
config "metrics" "accuracy" {
  producer = "map"

  step "set" {
    key = "b"
    val = 2
  }
}
`)

	var out bytes.Buffer
	a := NewApp(&out, &Config{
		ConfigPath:   treePath,
		DefaultsPath: defaultsPath,
		PrintResult:  true,
		LogLevel:     "error",
	})
	require.NoError(t, a.Run(context.Background()))
	require.Contains(t, out.String(), "metrics__accuracy: map[a:1 b:2]")
}

func TestApp_MissingConfigPath(t *testing.T) {
	var out bytes.Buffer
	a := NewApp(&out, &Config{ConfigPath: "/no/such/path.hcl", LogLevel: "error"})
	require.Error(t, a.Run(context.Background()))
}

func TestPickLoader(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "tree.yaml", "s:\n  c: {}\n")

	t.Run("yaml directory", func(t *testing.T) {
		loader, err := pickLoader(dir)
		require.NoError(t, err)
		require.IsType(t, &yaml.Loader{}, loader)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTree(t, dir, "tree.txt", "")
		_, err := pickLoader(path)
		require.ErrorContains(t, err, "unsupported tree file extension")
	})

	t.Run("hcl wins over yaml", func(t *testing.T) {
		writeTree(t, dir, "tree.hcl", `config "s" "c" {}`)
		loader, err := pickLoader(dir)
		require.NoError(t, err)
		require.IsType(t, &hcl.Loader{}, loader)
	})
}
