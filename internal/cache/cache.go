// Package cache persists intermediate build objects to disk through named
// codecs, so a later run can restore an expensive object instead of
// rebuilding it. The engine never calls it directly; the base producer's
// dump_cache and load_cache steps do.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Codec encodes and decodes one serialization format.
type Codec interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader) (any, error)
}

// FilePath returns the cache file location for a prefix inside dir.
func FilePath(dir, prefix string) string {
	return filepath.Join(dir, prefix+".dump")
}

// Dump writes v into dir under prefix, creating the directory and removing
// any stale files for the same prefix first. It returns the written path.
func Dump(dir, prefix string, codec Codec, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir %s: %w", dir, err)
	}
	stale, err := filepath.Glob(filepath.Join(dir, prefix+"*"))
	if err != nil {
		return "", err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("removing stale cache file %s: %w", path, err)
		}
	}

	path := FilePath(dir, prefix)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating cache file %s: %w", path, err)
	}
	defer f.Close()
	if err := codec.Encode(f, v); err != nil {
		return "", fmt.Errorf("encoding cache file %s: %w", path, err)
	}
	return path, nil
}

// Load restores the object stored in dir under prefix.
func Load(dir, prefix string, codec Codec) (any, error) {
	path := FilePath(dir, prefix)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache file %s: %w", path, err)
	}
	defer f.Close()
	v, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding cache file %s: %w", path, err)
	}
	return v, nil
}
