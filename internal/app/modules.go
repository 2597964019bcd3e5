package app

import (
	"github.com/vk/objforge/internal/cache"
	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/executor"
	"github.com/vk/objforge/internal/fsutil"
	"github.com/vk/objforge/internal/registry"
	"github.com/vk/objforge/modules/mapobj"
	"github.com/vk/objforge/modules/trace"
)

// coreModules is the definitive list of all modules that are compiled into
// the objforge binary.
var coreModules = []registry.Module{
	&mapobj.Module{},
	&trace.Module{},
}

// NewRegistry creates a registry carrying the engine built-ins (the base
// producer factory, the cache codecs, the project-path seed) plus the given
// modules; with none given, the core modules are registered.
func NewRegistry(modules ...registry.Module) *registry.Registry {
	r := registry.New()
	r.RegisterProducer(config.BaseProducer, executor.NewProducer)
	r.RegisterCodec("json", cache.JSONCodec{})
	r.RegisterCodec("cbor", cache.CBORCodec{})
	r.RegisterCodec("gob", cache.GobCodec{})
	r.RegisterSeed("path", func() (any, error) { return fsutil.ProjectPath() })

	if len(modules) == 0 {
		modules = coreModules
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}
