// Package mapobj provides the "map" producer: it builds map[string]any
// objects through set/merge/del/print steps. It is the workhorse producer
// for configuration-assembled value objects.
package mapobj

import (
	"context"
	"fmt"

	"github.com/vk/objforge/internal/executor"
	"github.com/vk/objforge/internal/registry"
	"github.com/vk/objforge/internal/store"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the producer factory and its step implementations.
// The steps are also registered standalone so trees can patch them onto
// other producers by name.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProducer("map", NewProducer)
	r.RegisterStep("map.set", Set)
	r.RegisterStep("map.merge", Merge)
	r.RegisterStep("map.del", Del)
	r.RegisterStep("map.print", Print)
}

// NewProducer builds on the base producer and binds the map steps.
func NewProducer(objects *store.Store, oid string, ctor map[string]any) (*executor.Producer, error) {
	p, err := executor.NewProducer(objects, oid, ctor)
	if err != nil {
		return nil, err
	}
	p.Bind("set", Set)
	p.Bind("merge", Merge)
	p.Bind("del", Del)
	p.Bind("print", Print)
	return p, nil
}

// Set stores kwargs["val"] under kwargs["key"].
func Set(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
	m, err := asMap(obj)
	if err != nil {
		return nil, err
	}
	key, err := keyArg(kwargs)
	if err != nil {
		return nil, err
	}
	m[key] = kwargs["val"]
	return m, nil
}

// Merge copies every entry of kwargs["from"] into the running object. The
// from argument is typically a reference to another built object.
func Merge(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
	m, err := asMap(obj)
	if err != nil {
		return nil, err
	}
	from, ok := kwargs["from"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("merge: from must be a map, got %T", kwargs["from"])
	}
	for k, v := range from {
		m[k] = v
	}
	return m, nil
}

// Del removes kwargs["key"].
func Del(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
	m, err := asMap(obj)
	if err != nil {
		return nil, err
	}
	key, err := keyArg(kwargs)
	if err != nil {
		return nil, err
	}
	delete(m, key)
	return m, nil
}

// Print logs the value stored under kwargs["key"], or the whole object when
// no key is given.
func Print(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
	m, err := asMap(obj)
	if err != nil {
		return nil, err
	}
	if key, ok := kwargs["key"].(string); ok && key != "" {
		p.Logger.Info("print", "id", p.OID, "key", key, "value", m[key])
	} else {
		p.Logger.Info("print", "id", p.OID, "value", m)
	}
	return m, nil
}

func asMap(obj any) (map[string]any, error) {
	switch m := obj.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("map producer requires a map[string]any object, got %T", obj)
	}
}

func keyArg(kwargs map[string]any) (string, error) {
	key, ok := kwargs["key"].(string)
	if !ok || key == "" {
		return "", fmt.Errorf("key argument must be a non-empty string, got %v", kwargs["key"])
	}
	return key, nil
}
