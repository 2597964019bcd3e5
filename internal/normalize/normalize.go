// Package normalize merges a raw tree with a default tree and fills the
// structural gaps, producing a fully-shaped tree: after it runs, every
// sub-configuration carries all six structural fields and every step has its
// method, kwargs and decorators present. Normalizing an already normalized
// tree against an empty default is a no-op.
package normalize

import (
	"fmt"
	"reflect"

	"github.com/vk/objforge/internal/config"
)

// Apply returns a normalized deep copy of tree. The inputs are not mutated.
// defaults may be nil.
func Apply(tree, defaults *config.Tree) (*config.Tree, error) {
	out := tree.Clone()
	if out.Sections == nil {
		out.Sections = make(map[string]*config.Section)
	}

	if defaults != nil {
		mergeDefaults(out, defaults)
	}
	fillBuiltins(out)

	if err := shapeSteps(out); err != nil {
		return nil, err
	}

	if out.Global == nil {
		out.Global = make(map[string]any)
	}
	for _, section := range out.Sections {
		if section.Global == nil {
			section.Global = make(map[string]any)
		}
	}
	return out, nil
}

// mergeDefaults copies what the working tree lacks from the default tree:
// whole sections absent from it, structural fields missing from individual
// sub-configurations, and global map entries at the tree and section levels.
func mergeDefaults(tree, defaults *config.Tree) {
	for key, defVal := range defaults.Global {
		if tree.Global == nil {
			tree.Global = make(map[string]any)
		}
		if _, ok := tree.Global[key]; !ok {
			tree.Global[key] = config.DeepCopy(defVal)
		}
	}

	for sectionID, defSection := range defaults.Sections {
		section, ok := tree.Sections[sectionID]
		if !ok {
			tree.Sections[sectionID] = defSection.Clone()
			continue
		}

		for key, defVal := range defSection.Global {
			if section.Global == nil {
				section.Global = make(map[string]any)
			}
			if _, ok := section.Global[key]; !ok {
				section.Global[key] = config.DeepCopy(defVal)
			}
		}

		defIDs := defSection.IDs()
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			defConf, ok := defSection.Get(configID)
			if !ok && len(defIDs) > 0 {
				// No name match: the first sub-configuration of the default
				// section donates its fields.
				defConf, _ = defSection.Get(defIDs[0])
				ok = true
			}
			if ok {
				fillFromDefault(conf, defConf)
			}
		}
	}
}

// fillFromDefault deep-copies any unset structural field from the default
// sub-configuration.
func fillFromDefault(conf, def *config.SubConfig) {
	if conf.Init == nil && def.Init != nil {
		conf.Init = config.DeepCopy(def.Init)
	}
	if conf.Producer == "" {
		conf.Producer = def.Producer
	}
	if conf.Patch == nil && def.Patch != nil {
		conf.Patch = config.CopyMap(def.Patch)
	}
	if conf.Steps == nil && def.Steps != nil {
		conf.Steps = make([]*config.Step, len(def.Steps))
		for i, st := range def.Steps {
			conf.Steps[i] = st.Clone()
		}
	}
	if conf.Global == nil && def.Global != nil {
		conf.Global = config.CopyMap(def.Global)
	}
	if conf.Priority == nil && def.Priority != nil {
		p := *def.Priority
		conf.Priority = &p
	}
}

// fillBuiltins gives every still-unset structural field its built-in
// default, so the shaped-tree invariant holds even for sections the default
// tree never mentioned.
func fillBuiltins(tree *config.Tree) {
	for _, section := range tree.Sections {
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			if conf.Init == nil {
				conf.Init = map[string]any{}
			}
			if conf.Producer == "" {
				conf.Producer = config.BaseProducer
			}
			if conf.Patch == nil {
				conf.Patch = map[string]any{}
			}
			if conf.Steps == nil {
				conf.Steps = []*config.Step{}
			}
			if conf.Global == nil {
				conf.Global = map[string]any{}
			}
			if conf.Priority == nil {
				conf.Priority = config.Priority(1)
			}
		}
	}
}

// shapeSteps normalizes every step to the full three-part shape and rejects
// malformed ones.
func shapeSteps(tree *config.Tree) error {
	for sectionID, section := range tree.Sections {
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			for i, step := range conf.Steps {
				if step == nil {
					return &config.StructureError{Section: sectionID, Config: configID,
						Step: fmt.Sprintf("steps[%d]", i), Detail: "step is nil"}
				}
				if step.Method == "" {
					return &config.StructureError{Section: sectionID, Config: configID,
						Step: fmt.Sprintf("steps[%d]", i), Detail: "step method identifier must be a non-empty string"}
				}
				if step.Kwargs == nil {
					step.Kwargs = map[string]any{}
				}
				if step.Decorators == nil {
					step.Decorators = []any{}
				}
				for _, dec := range step.Decorators {
					if _, ok := dec.(string); ok {
						continue
					}
					if dec == nil || reflect.TypeOf(dec).Kind() != reflect.Func {
						return &config.StructureError{Section: sectionID, Config: configID, Step: step.Method,
							Detail: fmt.Sprintf("decorator must be a name or function, got %T", dec)}
					}
				}
			}
		}
	}
	return nil
}
