package executor

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/objforge/internal/fsutil"
	"github.com/vk/objforge/internal/store"
)

// Producer is a constructed factory instance. Its callable surface is an
// explicit per-instance dispatch map from method name to function, populated
// at construction and extended by patching; nothing relies on mutable type
// state.
type Producer struct {
	// Objects is the shared store of previously built objects.
	Objects *store.Store

	// OID is the composite id this producer is building.
	OID string

	// Logger is the injected build logger.
	Logger *slog.Logger

	// ProjectPath is the base directory for relative cache paths.
	ProjectPath string

	resolver Resolver
	methods  map[string]StepFunc
}

// NewProducer is the base factory, registered under the "base" key. The
// logger and project path collaborators are injected by id lookup in the
// objects store through the logger_id and path_id constructor kwargs, or
// defaulted to the ambient logger and the discovered project path.
func NewProducer(objects *store.Store, oid string, ctor map[string]any) (*Producer, error) {
	p := &Producer{
		Objects: objects,
		OID:     oid,
		Logger:  slog.Default(),
		methods: make(map[string]StepFunc),
	}

	if id, ok := stringKwarg(ctor, "logger_id"); ok {
		obj, found := objects.Get(id)
		if !found {
			return nil, &MissingReferenceError{OID: oid, Kind: "logger", Name: id}
		}
		logger, ok := obj.(*slog.Logger)
		if !ok {
			return nil, fmt.Errorf("producer %s: object %q is %T, want *slog.Logger", oid, id, obj)
		}
		p.Logger = logger
	}

	if id, ok := stringKwarg(ctor, "path_id"); ok {
		obj, found := objects.Get(id)
		if !found {
			return nil, &MissingReferenceError{OID: oid, Kind: "path", Name: id}
		}
		path, ok := obj.(string)
		if !ok {
			return nil, fmt.Errorf("producer %s: object %q is %T, want string path", oid, id, obj)
		}
		p.ProjectPath = path
	} else {
		path, err := fsutil.ProjectPath()
		if err != nil {
			return nil, fmt.Errorf("producer %s: discovering project path: %w", oid, err)
		}
		p.ProjectPath = path
	}

	p.Bind("dump_cache", dumpCache)
	p.Bind("load_cache", loadCache)
	return p, nil
}

// Bind places an implementation in the instance's method table, replacing
// any previous binding for the name.
func (p *Producer) Bind(name string, fn StepFunc) {
	p.methods[name] = fn
}

// Method returns the bound implementation for name.
func (p *Producer) Method(name string) (StepFunc, bool) {
	fn, ok := p.methods[name]
	return fn, ok
}

// methodsSnapshot copies the current table so patching can resolve aliases
// against the pre-patch state.
func (p *Producer) methodsSnapshot() map[string]StepFunc {
	out := make(map[string]StepFunc, len(p.methods))
	for name, fn := range p.methods {
		out[name] = fn
	}
	return out
}

// attach injects the resolver after construction; factories never see it.
func (p *Producer) attach(r Resolver) {
	if p.resolver == nil {
		p.resolver = r
	}
	if p.methods == nil {
		p.methods = make(map[string]StepFunc)
	}
}

// CacheDir resolves a cachedir kwarg: absolute paths pass through,
// ./-relative paths are joined onto the project path, and an empty value
// falls back to <project>/.cache/objects.
func (p *Producer) CacheDir(dir string) string {
	switch {
	case dir == "":
		return filepath.Join(p.ProjectPath, ".cache", "objects")
	case strings.HasPrefix(dir, "./"):
		return filepath.Join(p.ProjectPath, dir[2:])
	default:
		return dir
	}
}

func stringKwarg(kwargs map[string]any, key string) (string, bool) {
	if kwargs == nil {
		return "", false
	}
	v, ok := kwargs[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
