package app

import (
	"log/slog"

	"github.com/vk/objforge/internal/config"
)

// DefaultTree is the default tree used when a run supplies none: a "path"
// section whose object is the discovered project directory, and a "logger"
// section exposing the given logger (the ambient one when nil), so
// sub-configurations can inject both through path_id / logger_id. Trees that
// define their own path or logger sections shadow these.
func DefaultTree(logger *slog.Logger) *config.Tree {
	if logger == nil {
		logger = slog.Default()
	}
	tree := config.NewTree()
	tree.Section("path").Set("default", &config.SubConfig{
		Init:     config.SeedRef("path"),
		Producer: config.BaseProducer,
		Priority: config.Priority(1),
	})
	tree.Section("logger").Set("default", &config.SubConfig{
		Init:     logger,
		Producer: config.BaseProducer,
		Priority: config.Priority(1),
	})
	return tree
}
