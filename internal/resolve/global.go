// Package resolve applies the global-override cascade and, when opted in,
// fills unset step arguments by name-matching against sibling sections. It
// operates in place on a normalized tree.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/objforge/internal/config"
)

// Globals runs the three-stage cascade: unknown sub-configuration keys are
// absorbed into their global map, tree- and section-level globals are
// distributed downward (at each level, ownership transfers and the source
// map is cleared), and each sub-configuration's final global map is applied
// to its steps' kwargs. A global value always wins over an explicit
// step-supplied literal.
func Globals(tree *config.Tree) error {
	absorbExtras(tree)

	if err := distribute(tree.Global, sectionChildren(tree)); err != nil {
		return err
	}
	tree.Global = map[string]any{}

	for _, section := range tree.Sections {
		if err := distribute(section.Global, configChildren(section)); err != nil {
			return err
		}
		section.Global = map[string]any{}
	}

	for _, section := range tree.Sections {
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			applyGlobals(conf)
		}
	}
	return nil
}

// absorbExtras moves unknown sub-configuration keys into the global map,
// overwriting entries the sub-configuration set under the same name. This is
// what makes the flat shorthand form work.
func absorbExtras(tree *config.Tree) {
	for _, section := range tree.Sections {
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			for key, val := range conf.Extra {
				conf.Global[key] = val
			}
			conf.Extra = nil
		}
	}
}

// child is a named global map one level down from the map being distributed.
type child struct {
	name   string
	global map[string]any
}

func sectionChildren(tree *config.Tree) []child {
	out := make([]child, 0, len(tree.Sections))
	for id, section := range tree.Sections {
		out = append(out, child{name: id, global: section.Global})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func configChildren(section *config.Section) []child {
	ids := section.IDs()
	out := make([]child, 0, len(ids))
	for _, id := range ids {
		conf, _ := section.Get(id)
		out = append(out, child{name: id, global: conf.Global})
	}
	return out
}

// distribute routes one level's global map into its children. A key whose
// first path segment names a child is targeted: the segment is stripped and
// the entry lands only in that child. Every other key is broadcast verbatim
// to all children. Broadcasts are written before targeted entries so the
// more specific path wins, and a parent entry overwrites a child's own value
// under the same key.
func distribute(global map[string]any, children []child) error {
	if len(global) == 0 {
		return nil
	}
	byName := make(map[string]map[string]any, len(children))
	for _, c := range children {
		byName[c.name] = c.global
	}

	keys := make([]string, 0, len(global))
	for key := range global {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	targeted := make([]string, 0, len(keys))
	for _, key := range keys {
		head, _, _ := strings.Cut(key, "__")
		if _, ok := byName[head]; ok {
			targeted = append(targeted, key)
			continue
		}
		for _, c := range children {
			c.global[key] = config.DeepCopy(global[key])
		}
	}

	for _, key := range targeted {
		head, rest, _ := strings.Cut(key, "__")
		if rest == "" {
			return fmt.Errorf("global key %q targets %q but carries no remaining path", key, head)
		}
		byName[head][rest] = config.DeepCopy(global[key])
	}
	return nil
}

// applyGlobals overwrites matching step arguments with the
// sub-configuration's global values. A global key matches an argument named
// exactly like it, or through the method-qualified form method__kwarg.
func applyGlobals(conf *config.SubConfig) {
	keys := make([]string, 0, len(conf.Global))
	for key := range conf.Global {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := conf.Global[key]
		for _, step := range conf.Steps {
			for kwarg := range step.Kwargs {
				if key == kwarg || key == step.Method+"__"+kwarg {
					step.Kwargs[kwarg] = config.DeepCopy(val)
				}
			}
		}
	}
}
