package config

import "context"

// Loader is the interface for a format-specific tree loader. Load reads one
// file or a directory of files and translates them into the typed model.
type Loader interface {
	Load(ctx context.Context, path string) (*Tree, error)
}
