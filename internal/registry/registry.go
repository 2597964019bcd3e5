// Package registry maps string keys to the Go callables a configuration
// tree may reference: producer factories, step implementations, decorators,
// seed factories and cache codecs. Keeping callables behind names keeps the
// tree itself serializable. Modules register their entries at startup;
// duplicate registration is a programmer error and panics.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/objforge/internal/cache"
	"github.com/vk/objforge/internal/executor"
)

// Module is the interface all built-in and user modules implement to be
// wired into an application instance.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered callables for a single application
// instance. It implements executor.Resolver.
type Registry struct {
	producers  map[string]executor.Factory
	steps      map[string]executor.StepFunc
	decorators map[string]executor.Decorator
	seeds      map[string]executor.Seed
	codecs     map[string]cache.Codec
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		producers:  make(map[string]executor.Factory),
		steps:      make(map[string]executor.StepFunc),
		decorators: make(map[string]executor.Decorator),
		seeds:      make(map[string]executor.Seed),
		codecs:     make(map[string]cache.Codec),
	}
}

// RegisterProducer registers a producer factory under name.
func (r *Registry) RegisterProducer(name string, f executor.Factory) {
	if _, exists := r.producers[name]; exists {
		panic(fmt.Sprintf("producer factory %q already registered", name))
	}
	slog.Debug("Registering producer factory.", "name", name)
	r.producers[name] = f
}

// RegisterStep registers a step implementation under name, available as a
// patch target from file-loaded trees.
func (r *Registry) RegisterStep(name string, fn executor.StepFunc) {
	if _, exists := r.steps[name]; exists {
		panic(fmt.Sprintf("step implementation %q already registered", name))
	}
	slog.Debug("Registering step implementation.", "name", name)
	r.steps[name] = fn
}

// RegisterDecorator registers a decorator under name.
func (r *Registry) RegisterDecorator(name string, d executor.Decorator) {
	if _, exists := r.decorators[name]; exists {
		panic(fmt.Sprintf("decorator %q already registered", name))
	}
	slog.Debug("Registering decorator.", "name", name)
	r.decorators[name] = d
}

// RegisterSeed registers a seed factory under name, referenced from trees
// through config.SeedRef.
func (r *Registry) RegisterSeed(name string, s executor.Seed) {
	if _, exists := r.seeds[name]; exists {
		panic(fmt.Sprintf("seed factory %q already registered", name))
	}
	slog.Debug("Registering seed factory.", "name", name)
	r.seeds[name] = s
}

// RegisterCodec registers a cache codec under name.
func (r *Registry) RegisterCodec(name string, c cache.Codec) {
	if _, exists := r.codecs[name]; exists {
		panic(fmt.Sprintf("codec %q already registered", name))
	}
	slog.Debug("Registering cache codec.", "name", name)
	r.codecs[name] = c
}

// Producer implements executor.Resolver.
func (r *Registry) Producer(name string) (executor.Factory, bool) {
	f, ok := r.producers[name]
	return f, ok
}

// Step implements executor.Resolver.
func (r *Registry) Step(name string) (executor.StepFunc, bool) {
	fn, ok := r.steps[name]
	return fn, ok
}

// Decorator implements executor.Resolver.
func (r *Registry) Decorator(name string) (executor.Decorator, bool) {
	d, ok := r.decorators[name]
	return d, ok
}

// Seed implements executor.Resolver.
func (r *Registry) Seed(name string) (executor.Seed, bool) {
	s, ok := r.seeds[name]
	return s, ok
}

// Codec implements executor.Resolver.
func (r *Registry) Codec(name string) (cache.Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}
