package executor

import (
	"context"

	"github.com/vk/objforge/internal/cache"
)

// DefaultCodec is used by the cache steps when no codec kwarg is given.
const DefaultCodec = "gob"

// dumpCache serializes the running object to disk and passes it through
// unchanged. Kwargs: prefix (default oid), cachedir (absolute or ./-relative
// to the project path), codec (registered codec name).
func dumpCache(ctx context.Context, p *Producer, obj any, kwargs map[string]any) (any, error) {
	prefix, codec, dir, err := cacheArgs(p, kwargs)
	if err != nil {
		return nil, err
	}
	path, err := cache.Dump(dir, prefix, codec, obj)
	if err != nil {
		return nil, err
	}
	p.Logger.Warn("cache file updated", "id", p.OID, "path", path)
	return obj, nil
}

// loadCache replaces the running object with the cached one. The incoming
// object is only a template and is discarded.
func loadCache(ctx context.Context, p *Producer, obj any, kwargs map[string]any) (any, error) {
	prefix, codec, dir, err := cacheArgs(p, kwargs)
	if err != nil {
		return nil, err
	}
	loaded, err := cache.Load(dir, prefix, codec)
	if err != nil {
		return nil, err
	}
	p.Logger.Warn("cache file used", "id", p.OID, "path", cache.FilePath(dir, prefix))
	return loaded, nil
}

func cacheArgs(p *Producer, kwargs map[string]any) (prefix string, codec cache.Codec, dir string, err error) {
	prefix = p.OID
	if v, ok := stringKwarg(kwargs, "prefix"); ok {
		prefix = v
	}
	name := DefaultCodec
	if v, ok := stringKwarg(kwargs, "codec"); ok {
		name = v
	}
	codec, ok := p.resolver.Codec(name)
	if !ok {
		return "", nil, "", &MissingReferenceError{OID: p.OID, Kind: "codec", Name: name}
	}
	rawDir, _ := stringKwarg(kwargs, "cachedir")
	return prefix, codec, p.CacheDir(rawDir), nil
}
