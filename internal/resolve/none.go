package resolve

import (
	"strings"

	"github.com/vk/objforge/internal/config"
)

// None fills unset step arguments, opt-in per run. Two passes per
// sub-configuration: primitive global keys substitute their value into
// same-named unset arguments, and section-shaped keys resolve unset
// arguments to a composite id — from an explicit global override first, or
// synthesized when the target section holds exactly one sub-configuration.
// More than one candidate without an explicit choice is an
// AmbiguousReferenceError.
//
// A plain-named argument receives the composite id string like its
// _id-suffixed twin; the executor's reference substitution later swaps the
// plain form for the live object.
func None(tree *config.Tree) error {
	for sectionID, section := range tree.Sections {
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			resolvePrimitives(tree, conf)
			if err := resolveSectionRefs(tree, sectionID, configID, conf); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolvePrimitives handles global keys that name no section: their value
// fills any unset step argument of the same name.
func resolvePrimitives(tree *config.Tree, conf *config.SubConfig) {
	for key, val := range conf.Global {
		if tree.Has(strings.TrimSuffix(key, "_id")) {
			continue
		}
		for _, step := range conf.Steps {
			if existing, ok := step.Kwargs[key]; ok && isUnset(existing) {
				step.Kwargs[key] = config.DeepCopy(val)
			}
		}
	}
}

// resolveSectionRefs handles arguments whose name (with or without the _id
// suffix) matches a section name.
func resolveSectionRefs(tree *config.Tree, sectionID, configID string, conf *config.SubConfig) error {
	for target, targetSection := range tree.Sections {
		override, hasOverride := conf.Global[target]
		if !hasOverride {
			override, hasOverride = conf.Global[target+"_id"]
		}

		for _, step := range conf.Steps {
			kwarg := ""
			if _, ok := step.Kwargs[target]; ok {
				kwarg = target
			} else if _, ok := step.Kwargs[target+"_id"]; ok {
				kwarg = target + "_id"
			}
			if kwarg == "" || !isUnset(step.Kwargs[kwarg]) {
				continue
			}

			if hasOverride && !isUnset(override) {
				step.Kwargs[kwarg] = config.DeepCopy(override)
				continue
			}
			switch targetSection.Len() {
			case 0:
				// Nothing to point at; the argument stays unset.
			case 1:
				step.Kwargs[kwarg] = config.CompositeID(target, targetSection.IDs()[0])
			default:
				return &AmbiguousReferenceError{
					Section: sectionID,
					Config:  configID,
					Step:    step.Method,
					Kwarg:   kwarg,
					Target:  target,
				}
			}
		}
	}
	return nil
}

// isUnset mirrors the falsy test reference resolution keys on: nil, empty
// string, false, numeric zero, and empty collections all count as unset.
func isUnset(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
