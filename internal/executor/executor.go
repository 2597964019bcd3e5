// Package executor is the build runtime. It processes the scheduler's
// ordered list strictly one entry at a time: constructs the producer through
// its registered factory, patches the instance's method table, executes the
// remaining steps with decorator chains and cross-object reference
// substitution, and inserts the result into the shared objects store.
package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/objforge/internal/cache"
	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/scheduler"
	"github.com/vk/objforge/internal/store"
)

// StepFunc is the shape of every producer method: it receives the running
// object and the step's resolved kwargs, and returns the new running object.
type StepFunc func(ctx context.Context, p *Producer, obj any, kwargs map[string]any) (any, error)

// Decorator wraps a step call. Chains compose with the first decorator
// applied innermost.
type Decorator func(StepFunc) StepFunc

// Factory constructs a producer instance for one sub-configuration. It
// receives the shared objects store, the composite id being built, and the
// kwargs of the __init__ step if one was given.
type Factory func(objects *store.Store, oid string, ctor map[string]any) (*Producer, error)

// Seed is a registered seed factory, invoked to produce an init value.
type Seed func() (any, error)

// Resolver looks registered callables up by name. The registry implements
// it; the executor stays decoupled from registration mechanics.
type Resolver interface {
	Producer(name string) (Factory, bool)
	Step(name string) (StepFunc, bool)
	Decorator(name string) (Decorator, bool)
	Seed(name string) (Seed, bool)
	Codec(name string) (cache.Codec, bool)
}

// Executor runs scheduled sub-configurations against a shared objects store.
type Executor struct {
	resolver Resolver
	store    *store.Store
}

// New creates an executor bound to a resolver and an objects store.
func New(resolver Resolver, st *store.Store) *Executor {
	return &Executor{resolver: resolver, store: st}
}

// Store returns the executor's objects store.
func (e *Executor) Store() *store.Store {
	return e.store
}

// Run executes the ordered entries sequentially. The first failure aborts
// the run; the store keeps the objects completed before it.
func (e *Executor) Run(ctx context.Context, entries []scheduler.Entry) error {
	for _, entry := range entries {
		obj, err := e.runOne(ctx, entry)
		if err != nil {
			return fmt.Errorf("building %s: %w", entry.OID, err)
		}
		if replaced := e.store.Put(entry.OID, obj); replaced {
			ctxlog.FromContext(ctx).Warn("existing object replaced", "id", entry.OID)
		}
	}
	return nil
}

// runOne builds a single sub-configuration and returns the finished object.
func (e *Executor) runOne(ctx context.Context, entry scheduler.Entry) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("building configuration", "id", entry.OID, "priority", entry.Priority)

	conf := entry.Config
	steps, ctorStep, err := splitInitStep(conf.Steps)
	if err != nil {
		return nil, err
	}

	p, err := e.construct(ctx, entry.OID, conf.Producer, ctorStep)
	if err != nil {
		return nil, err
	}
	if err := e.patch(p, conf.Patch); err != nil {
		return nil, err
	}

	obj, err := e.resolveInit(conf.Init)
	if err != nil {
		return nil, err
	}

	for _, step := range steps {
		p.Logger.Debug("step", "id", entry.OID, "method", step.Method)
		method, ok := p.Method(step.Method)
		if !ok {
			return nil, &MissingReferenceError{OID: entry.OID, Kind: "method", Name: step.Method}
		}
		kwargs := e.resolveKwargs(step.Kwargs)
		wrapped, err := e.compose(step.Decorators, method)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Method, err)
		}
		obj, err = wrapped(ctx, p, obj, kwargs)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", step.Method, err)
		}
	}
	return obj, nil
}

// construct builds the producer instance, wrapping the construction call in
// the __init__ step's decorator chain when one was given.
func (e *Executor) construct(ctx context.Context, oid, producerName string, ctorStep *config.Step) (*Producer, error) {
	factory, ok := e.resolver.Producer(producerName)
	if !ok {
		return nil, &ProducerConstructionError{OID: oid, Producer: producerName, Reason: "no such producer factory registered"}
	}

	var ctorKwargs map[string]any
	var ctorDecors []any
	if ctorStep != nil {
		ctorKwargs = ctorStep.Kwargs
		ctorDecors = ctorStep.Decorators
	}

	call := StepFunc(func(ctx context.Context, _ *Producer, _ any, kwargs map[string]any) (any, error) {
		return factory(e.store, oid, kwargs)
	})
	wrapped, err := e.compose(ctorDecors, call)
	if err != nil {
		return nil, fmt.Errorf("constructing %s: %w", oid, err)
	}
	res, err := wrapped(ctx, nil, nil, ctorKwargs)
	if err != nil {
		return nil, &ProducerConstructionError{OID: oid, Producer: producerName, Reason: err.Error()}
	}
	p, ok := res.(*Producer)
	if !ok || p == nil {
		return nil, &ProducerConstructionError{OID: oid, Producer: producerName,
			Reason: fmt.Sprintf("factory returned %T, want *executor.Producer", res)}
	}
	p.attach(e.resolver)
	return p, nil
}

// patch binds custom implementations onto the instance's method table.
// String values are aliases, resolved against the pre-patch table first and
// against registered step implementations second, so an alias always refers
// to the base behavior even when the same pass rebinds that name.
func (e *Executor) patch(p *Producer, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	base := p.methodsSnapshot()
	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch impl := patch[name].(type) {
		case string:
			if m, ok := base[impl]; ok {
				p.Bind(name, m)
				continue
			}
			if m, ok := e.resolver.Step(impl); ok {
				p.Bind(name, m)
				continue
			}
			return &MissingReferenceError{OID: p.OID, Kind: "patch target", Name: impl}
		case StepFunc:
			p.Bind(name, impl)
		case func(context.Context, *Producer, any, map[string]any) (any, error):
			p.Bind(name, impl)
		default:
			return fmt.Errorf("patch %q on %s: unsupported implementation type %T", name, p.OID, impl)
		}
	}
	return nil
}

// resolveInit turns the configured init value into the seed object: factory
// functions and seed references are invoked, anything else is the literal
// seed.
func (e *Executor) resolveInit(init any) (any, error) {
	switch v := init.(type) {
	case func() any:
		return v(), nil
	case func() (any, error):
		return v()
	case Seed:
		return v()
	case config.SeedRef:
		seed, ok := e.resolver.Seed(string(v))
		if !ok {
			return nil, &MissingReferenceError{Kind: "seed factory", Name: string(v)}
		}
		return seed()
	default:
		return init, nil
	}
}

// resolveKwargs substitutes previously built objects into step arguments.
// Any argument whose name does not end in _id has its string value, or the
// string elements of its slice value, looked up in the objects store and
// replaced by the stored object on an exact match. _id-suffixed arguments
// keep their identifier strings.
func (e *Executor) resolveKwargs(kwargs map[string]any) map[string]any {
	resolved := make(map[string]any, len(kwargs))
	for key, val := range kwargs {
		if hasIDSuffix(key) {
			resolved[key] = val
			continue
		}
		switch v := val.(type) {
		case string:
			resolved[key] = e.lookup(v)
		case []any:
			out := make([]any, len(v))
			for i, item := range v {
				if s, ok := item.(string); ok {
					out[i] = e.lookup(s)
				} else {
					out[i] = item
				}
			}
			resolved[key] = out
		default:
			resolved[key] = val
		}
	}
	return resolved
}

func (e *Executor) lookup(id string) any {
	if obj, ok := e.store.Get(id); ok {
		return obj
	}
	return id
}

// compose wraps fn in the decorator chain: the first entry is applied first
// and therefore sits innermost.
func (e *Executor) compose(decorators []any, fn StepFunc) (StepFunc, error) {
	wrapped := fn
	for _, entry := range decorators {
		switch d := entry.(type) {
		case Decorator:
			wrapped = d(wrapped)
		case func(StepFunc) StepFunc:
			wrapped = d(wrapped)
		case string:
			dec, ok := e.resolver.Decorator(d)
			if !ok {
				return nil, &MissingReferenceError{Kind: "decorator", Name: d}
			}
			wrapped = dec(wrapped)
		default:
			return nil, fmt.Errorf("unsupported decorator type %T", entry)
		}
	}
	return wrapped, nil
}

// splitInitStep extracts a leading __init__ step. An __init__ anywhere else
// in the list is a fatal ordering error.
func splitInitStep(steps []*config.Step) (rest []*config.Step, ctor *config.Step, err error) {
	for i, step := range steps {
		if step.Method == config.InitMethod {
			if i != 0 {
				return nil, nil, fmt.Errorf("step %q must be the first step", config.InitMethod)
			}
			return steps[1:], step, nil
		}
	}
	return steps, nil, nil
}

func hasIDSuffix(key string) bool {
	return len(key) >= 3 && key[len(key)-3:] == "_id"
}
