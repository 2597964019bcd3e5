// Package testutil holds small helpers shared by the engine tests.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/vk/objforge/internal/config"
)

// Logger returns a debug-level text logger writing into the returned buffer,
// so tests can assert on emitted messages.
func Logger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

// Tree builds a tree from literal sections: each entry maps a section id to
// its sub-configurations in the given order.
func Tree(sections map[string]map[string]*config.SubConfig) *config.Tree {
	tree := config.NewTree()
	for sectionID, configs := range sections {
		section := tree.Section(sectionID)
		for configID, conf := range configs {
			section.Set(configID, conf)
		}
	}
	return tree
}

// Steps is a convenience for building a step list.
func Steps(steps ...*config.Step) []*config.Step {
	return steps
}

// Step builds one step with kwargs.
func Step(method string, kwargs map[string]any) *config.Step {
	return &config.Step{Method: method, Kwargs: kwargs}
}
