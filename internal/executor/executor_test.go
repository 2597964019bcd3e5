package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/objforge/internal/cache"
	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/ctxlog"
	"github.com/vk/objforge/internal/executor"
	"github.com/vk/objforge/internal/registry"
	"github.com/vk/objforge/internal/scheduler"
	"github.com/vk/objforge/internal/store"
	"github.com/vk/objforge/internal/testutil"
)

func setStep(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
	m, _ := obj.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	m[kwargs["key"].(string)] = kwargs["val"]
	return m, nil
}

// newRegistry wires the minimal surface the tests drive: the base producer,
// a map producer with a bound set method, the same set as a registered step,
// and the gob codec for the cache steps.
func newRegistry() *registry.Registry {
	r := registry.New()
	r.RegisterProducer(config.BaseProducer, executor.NewProducer)
	r.RegisterProducer("map", func(objects *store.Store, oid string, ctor map[string]any) (*executor.Producer, error) {
		p, err := executor.NewProducer(objects, oid, ctor)
		if err != nil {
			return nil, err
		}
		p.Bind("set", setStep)
		return p, nil
	})
	r.RegisterStep("set", setStep)
	r.RegisterCodec("gob", cache.GobCodec{})
	return r
}

func entry(oid string, conf *config.SubConfig) scheduler.Entry {
	return scheduler.Entry{Priority: 1, OID: oid, Config: conf}
}

func TestRun_BuildsConfiguredObject(t *testing.T) {
	conf := &config.SubConfig{
		Init:     map[string]any{"a": 7},
		Producer: "map",
		Steps:    testutil.Steps(testutil.Step("set", map[string]any{"key": "b", "val": 42})),
	}

	st := store.New()
	e := executor.New(newRegistry(), st)
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)}))

	obj, ok := st.Get("s__c")
	require.True(t, ok)
	require.Equal(t, map[string]any{"a": 7, "b": 42}, obj)
}

func TestRun_InitStepFeedsFactory(t *testing.T) {
	var captured map[string]any
	r := newRegistry()
	r.RegisterProducer("capture", func(objects *store.Store, oid string, ctor map[string]any) (*executor.Producer, error) {
		captured = ctor
		return executor.NewProducer(objects, oid, nil)
	})

	conf := &config.SubConfig{
		Init:     "seed",
		Producer: "capture",
		Steps:    testutil.Steps(testutil.Step(config.InitMethod, map[string]any{"n": 5})),
	}

	e := executor.New(r, store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)}))
	require.Equal(t, map[string]any{"n": 5}, captured)

	obj, _ := e.Store().Get("s__c")
	require.Equal(t, "seed", obj, "constructor step is not run as a build step")
}

func TestRun_InitStepMustBeFirst(t *testing.T) {
	conf := &config.SubConfig{
		Producer: "map",
		Steps: testutil.Steps(
			testutil.Step("set", map[string]any{"key": "a", "val": 1}),
			testutil.Step(config.InitMethod, nil),
		),
	}

	e := executor.New(newRegistry(), store.New())
	err := e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)})
	require.ErrorContains(t, err, config.InitMethod)
}

func TestRun_PatchAliasResolvesPrePatchTable(t *testing.T) {
	patched := func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
		m := obj.(map[string]any)
		m[kwargs["key"].(string)] = "patched"
		return m, nil
	}
	conf := &config.SubConfig{
		Init:     map[string]any{},
		Producer: "map",
		Patch:    map[string]any{"set": patched, "orig": "set"},
		Steps: testutil.Steps(
			testutil.Step("orig", map[string]any{"key": "a", "val": 1}),
			testutil.Step("set", map[string]any{"key": "b", "val": 2}),
		),
	}

	e := executor.New(newRegistry(), store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)}))

	obj, _ := e.Store().Get("s__c")
	require.Equal(t, map[string]any{"a": 1, "b": "patched"}, obj,
		"alias keeps the pre-patch behavior even though the same pass rebinds its target")
}

func TestRun_PatchBindsRegisteredStep(t *testing.T) {
	conf := &config.SubConfig{
		Init:     map[string]any{},
		Producer: config.BaseProducer,
		Patch:    map[string]any{"put": "set"},
		Steps:    testutil.Steps(testutil.Step("put", map[string]any{"key": "a", "val": 1})),
	}

	e := executor.New(newRegistry(), store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)}))

	obj, _ := e.Store().Get("s__c")
	require.Equal(t, map[string]any{"a": 1}, obj)
}

func TestRun_PatchTargetMissing(t *testing.T) {
	conf := &config.SubConfig{
		Producer: config.BaseProducer,
		Patch:    map[string]any{"put": "no_such_step"},
	}

	e := executor.New(newRegistry(), store.New())
	err := e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)})
	var refErr *executor.MissingReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "no_such_step", refErr.Name)
}

func TestRun_UnknownMethod(t *testing.T) {
	conf := &config.SubConfig{
		Producer: config.BaseProducer,
		Steps:    testutil.Steps(testutil.Step("fit", nil)),
	}

	e := executor.New(newRegistry(), store.New())
	err := e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)})
	var refErr *executor.MissingReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "method", refErr.Kind)
	require.Equal(t, "fit", refErr.Name)
}

func TestRun_DecoratorChainFirstInnermost(t *testing.T) {
	var trace []string
	mark := func(name string) executor.Decorator {
		return func(next executor.StepFunc) executor.StepFunc {
			return func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
				trace = append(trace, name)
				return next(ctx, p, obj, kwargs)
			}
		}
	}
	r := newRegistry()
	r.RegisterDecorator("first", mark("first"))
	r.RegisterDecorator("second", mark("second"))

	conf := &config.SubConfig{
		Init:     map[string]any{},
		Producer: "map",
		Steps: testutil.Steps(&config.Step{
			Method:     "set",
			Kwargs:     map[string]any{"key": "a", "val": 1},
			Decorators: []any{"first", "second", mark("literal")},
		}),
	}

	e := executor.New(r, store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)}))
	require.Equal(t, []string{"literal", "second", "first"}, trace,
		"the first decorator sits innermost, so later entries run before it")
}

func TestRun_UnknownDecorator(t *testing.T) {
	conf := &config.SubConfig{
		Producer: "map",
		Steps: testutil.Steps(&config.Step{
			Method:     "set",
			Kwargs:     map[string]any{"key": "a", "val": 1},
			Decorators: []any{"nope"},
		}),
	}

	e := executor.New(newRegistry(), store.New())
	err := e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)})
	var refErr *executor.MissingReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "decorator", refErr.Kind)
}

func TestRun_ReferenceSubstitution(t *testing.T) {
	metric := map[string]any{"name": "accuracy"}
	st := store.NewSeeded(map[string]any{"metric__m": metric})

	var seen map[string]any
	r := newRegistry()
	r.RegisterProducer("probe", func(objects *store.Store, oid string, ctor map[string]any) (*executor.Producer, error) {
		p, err := executor.NewProducer(objects, oid, ctor)
		if err != nil {
			return nil, err
		}
		p.Bind("fit", func(ctx context.Context, p *executor.Producer, obj any, kwargs map[string]any) (any, error) {
			seen = kwargs
			return obj, nil
		})
		return p, nil
	})

	conf := &config.SubConfig{
		Producer: "probe",
		Steps: testutil.Steps(testutil.Step("fit", map[string]any{
			"metric":    "metric__m",
			"metric_id": "metric__m",
			"extras":    []any{"metric__m", 3, "not_an_id"},
		})),
	}

	e := executor.New(r, st)
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("pipeline__p", conf)}))

	require.Equal(t, "metric__m", seen["metric_id"], "_id names keep the identifier string")
	require.Equal(t, []any{metric, 3, "not_an_id"}, seen["extras"])

	// The substituted value is the live stored object, not a copy.
	seen["metric"].(map[string]any)["name"] = "mutated"
	require.Equal(t, "mutated", metric["name"])
}

func TestRun_SeedRefInit(t *testing.T) {
	r := newRegistry()
	r.RegisterSeed("project", func() (any, error) { return "/proj", nil })

	conf := &config.SubConfig{Init: config.SeedRef("project"), Producer: config.BaseProducer}

	e := executor.New(r, store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("path__default", conf)}))

	obj, _ := e.Store().Get("path__default")
	require.Equal(t, "/proj", obj)
}

func TestRun_FuncInit(t *testing.T) {
	conf := &config.SubConfig{
		Init:     func() any { return map[string]any{"fresh": true} },
		Producer: config.BaseProducer,
	}

	e := executor.New(newRegistry(), store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)}))

	obj, _ := e.Store().Get("s__c")
	require.Equal(t, map[string]any{"fresh": true}, obj)
}

func TestRun_ReplacingSeededObjectWarns(t *testing.T) {
	logger, buf := testutil.Logger(t)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	st := store.NewSeeded(map[string]any{"s__c": "old"})
	conf := &config.SubConfig{Init: "new", Producer: config.BaseProducer}

	e := executor.New(newRegistry(), st)
	require.NoError(t, e.Run(ctx, []scheduler.Entry{entry("s__c", conf)}))

	obj, _ := st.Get("s__c")
	require.Equal(t, "new", obj)
	require.Contains(t, buf.String(), "existing object replaced")
}

func TestRun_UnknownProducer(t *testing.T) {
	conf := &config.SubConfig{Producer: "nope"}

	e := executor.New(newRegistry(), store.New())
	err := e.Run(context.Background(), []scheduler.Entry{entry("s__c", conf)})
	var ctorErr *executor.ProducerConstructionError
	require.ErrorAs(t, err, &ctorErr)
	require.Equal(t, "nope", ctorErr.Producer)
}

func TestRun_FirstFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	r := newRegistry()
	r.RegisterProducer("failing", func(objects *store.Store, oid string, ctor map[string]any) (*executor.Producer, error) {
		return nil, boom
	})

	entries := []scheduler.Entry{
		entry("a__fail", &config.SubConfig{Producer: "failing"}),
		entry("b__ok", &config.SubConfig{Init: 1, Producer: config.BaseProducer}),
	}

	e := executor.New(r, store.New())
	err := e.Run(context.Background(), entries)
	require.ErrorContains(t, err, "a__fail")
	require.False(t, e.Store().Has("b__ok"), "entries after the failure are not built")
}

func TestRun_CacheRoundTrip(t *testing.T) {
	dir := t.TempDir()

	dumpConf := &config.SubConfig{
		Init:     map[string]any{"a": 7},
		Producer: "map",
		Steps: testutil.Steps(
			testutil.Step("set", map[string]any{"key": "b", "val": 42}),
			testutil.Step("dump_cache", map[string]any{"cachedir": dir}),
		),
	}
	e := executor.New(newRegistry(), store.New())
	require.NoError(t, e.Run(context.Background(), []scheduler.Entry{entry("s__c", dumpConf)}))

	loadConf := &config.SubConfig{
		Init:     map[string]any{},
		Producer: config.BaseProducer,
		Steps:    testutil.Steps(testutil.Step("load_cache", map[string]any{"cachedir": dir, "prefix": "s__c"})),
	}
	e2 := executor.New(newRegistry(), store.New())
	require.NoError(t, e2.Run(context.Background(), []scheduler.Entry{entry("restored__c", loadConf)}))

	obj, _ := e2.Store().Get("restored__c")
	require.Equal(t, map[string]any{"a": 7, "b": 42}, obj)
}

func TestProducer_CacheDir(t *testing.T) {
	p := &executor.Producer{ProjectPath: "/proj"}
	require.Equal(t, "/proj/.cache/objects", p.CacheDir(""))
	require.Equal(t, "/proj/data/cache", p.CacheDir("./data/cache"))
	require.Equal(t, "/abs/cache", p.CacheDir("/abs/cache"))
}
