package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/objforge/internal/config"
	"github.com/vk/objforge/internal/schema"
)

// reserved step attribute; everything else in a step body is a kwarg.
const decoratorsAttr = "decorators"

// translateFile folds one decoded file into the tree. Config blocks keep
// their file order inside each section; a sub-configuration defined twice is
// an error.
func (l *Loader) translateFile(tree *config.Tree, f *schema.File) error {
	for _, g := range f.Globals {
		entries, err := attrValues(g.Body)
		if err != nil {
			return fmt.Errorf("tree-level global: %w", err)
		}
		if tree.Global == nil {
			tree.Global = make(map[string]any)
		}
		for k, v := range entries {
			tree.Global[k] = v
		}
	}

	for _, block := range f.Configs {
		conf, err := l.translateConfig(block)
		if err != nil {
			return fmt.Errorf("config %s__%s: %w", block.Section, block.Name, err)
		}
		section := tree.Section(block.Section)
		if _, exists := section.Get(block.Name); exists {
			return fmt.Errorf("config %s__%s defined more than once", block.Section, block.Name)
		}
		section.Set(block.Name, conf)
	}
	return nil
}

func (l *Loader) translateConfig(block *schema.ConfigBlock) (*config.SubConfig, error) {
	conf := &config.SubConfig{}

	if block.Producer != nil {
		conf.Producer = *block.Producer
	}
	if block.Priority != nil {
		conf.Priority = config.Priority(*block.Priority)
	}

	switch {
	case block.InitFactory != nil:
		conf.Init = config.SeedRef(*block.InitFactory)
	case block.Init != nil:
		val, diags := block.Init.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("init: %w", diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		conf.Init = goVal
	}

	for _, g := range block.Globals {
		entries, err := attrValues(g.Body)
		if err != nil {
			return nil, fmt.Errorf("global: %w", err)
		}
		if conf.Global == nil {
			conf.Global = make(map[string]any)
		}
		for k, v := range entries {
			conf.Global[k] = v
		}
	}

	if block.Patch != nil {
		entries, err := attrValues(block.Patch.Body)
		if err != nil {
			return nil, fmt.Errorf("patch: %w", err)
		}
		conf.Patch = make(map[string]any, len(entries))
		for name, v := range entries {
			target, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("patch %q: value must be a method or step name string, got %T", name, v)
			}
			conf.Patch[name] = target
		}
	}

	for _, s := range block.Steps {
		step, err := l.translateStep(s)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.Method, err)
		}
		conf.Steps = append(conf.Steps, step)
	}

	// Stray attributes are shorthand overrides headed for the global map.
	if block.Remain != nil {
		extra, err := attrValues(block.Remain)
		if err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			conf.Extra = extra
		}
	}
	return conf, nil
}

func (l *Loader) translateStep(s *schema.StepBlock) (*config.Step, error) {
	step := &config.Step{Method: s.Method, Kwargs: map[string]any{}}
	attrs, diags := s.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading step body: %w", diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		if name == decoratorsAttr {
			names, ok := goVal.([]any)
			if !ok {
				return nil, fmt.Errorf("decorators must be a list of names, got %T", goVal)
			}
			step.Decorators = names
			continue
		}
		step.Kwargs[name] = goVal
	}
	return step, nil
}

// attrValues evaluates every attribute of a body into plain Go values.
func attrValues(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading attributes: %w", diags)
	}
	out := make(map[string]any, len(attrs))

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = goVal
	}
	return out, nil
}
