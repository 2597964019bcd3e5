package config

import (
	"fmt"
	"sort"
)

// DecodeRaw translates an untyped nested-map tree (a literal Go map or the
// output of a format loader) into the typed model, validating shapes along
// the way. Section and sub-configuration keys are visited in sorted order so
// the resulting section order is deterministic; loaders that know their
// source order build sections directly instead.
func DecodeRaw(raw map[string]any) (*Tree, error) {
	tree := NewTree()
	for _, sectionID := range sortedKeys(raw) {
		if sectionID == KeyGlobal {
			glob, err := asStringMap(raw[sectionID])
			if err != nil {
				return nil, &StructureError{Section: sectionID, Detail: "tree-level global must be a mapping"}
			}
			tree.Global = glob
			continue
		}
		rawSection, err := asStringMap(raw[sectionID])
		if err != nil {
			return nil, &StructureError{Section: sectionID, Detail: "section must be a mapping of sub-configurations"}
		}
		section := tree.Section(sectionID)
		for _, configID := range sortedKeys(rawSection) {
			if configID == KeyGlobal {
				glob, err := asStringMap(rawSection[configID])
				if err != nil {
					return nil, &StructureError{Section: sectionID, Detail: "section-level global must be a mapping"}
				}
				section.Global = glob
				continue
			}
			rawConf, err := asStringMap(rawSection[configID])
			if err != nil {
				return nil, &StructureError{Section: sectionID, Config: configID, Detail: "sub-configuration must be a mapping"}
			}
			conf, err := DecodeRawSubConfig(sectionID, configID, rawConf)
			if err != nil {
				return nil, err
			}
			section.Set(configID, conf)
		}
	}
	return tree, nil
}

// DecodeRawSubConfig translates one raw sub-configuration mapping into the
// typed model. Unknown keys land in Extra for later absorption into Global.
func DecodeRawSubConfig(sectionID, configID string, raw map[string]any) (*SubConfig, error) {
	conf := &SubConfig{}
	var seedRef *SeedRef
	for key, val := range raw {
		switch key {
		case KeyInit:
			conf.Init = val
		case KeyInitFactory:
			name, ok := val.(string)
			if !ok {
				return nil, &StructureError{Section: sectionID, Config: configID,
					Detail: fmt.Sprintf("init_factory must be a string registry key, got %T", val)}
			}
			ref := SeedRef(name)
			seedRef = &ref
		case KeyProducer:
			name, ok := val.(string)
			if !ok {
				return nil, &StructureError{Section: sectionID, Config: configID,
					Detail: fmt.Sprintf("producer must be a string registry key, got %T", val)}
			}
			conf.Producer = name
		case KeyPatch:
			patch, err := asStringMap(val)
			if err != nil {
				return nil, &StructureError{Section: sectionID, Config: configID, Detail: "patch must be a mapping"}
			}
			conf.Patch = patch
		case KeySteps:
			steps, err := decodeRawSteps(sectionID, configID, val)
			if err != nil {
				return nil, err
			}
			conf.Steps = steps
		case KeyGlobal:
			glob, err := asStringMap(val)
			if err != nil {
				return nil, &StructureError{Section: sectionID, Config: configID, Detail: "global must be a mapping"}
			}
			conf.Global = glob
		case KeyPriority:
			p, ok := intFromAny(val)
			if !ok {
				return nil, &StructureError{Section: sectionID, Config: configID,
					Detail: fmt.Sprintf("priority must be an integer, got %T", val)}
			}
			conf.Priority = &p
		default:
			if conf.Extra == nil {
				conf.Extra = make(map[string]any)
			}
			conf.Extra[key] = val
		}
	}
	if seedRef != nil {
		conf.Init = *seedRef
	}
	return conf, nil
}

// decodeRawSteps accepts a sequence of raw steps, each either a mapping with
// method/kwargs/decorators keys or a tuple-shaped []any of one to three
// elements.
func decodeRawSteps(sectionID, configID string, val any) ([]*Step, error) {
	seq, ok := val.([]any)
	if !ok {
		return nil, &StructureError{Section: sectionID, Config: configID, Detail: "steps must be a sequence"}
	}
	steps := make([]*Step, 0, len(seq))
	for i, rawStep := range seq {
		step, err := decodeRawStep(sectionID, configID, i, rawStep)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func decodeRawStep(sectionID, configID string, idx int, raw any) (*Step, error) {
	pos := fmt.Sprintf("steps[%d]", idx)
	switch v := raw.(type) {
	case []any:
		if len(v) == 0 || len(v) > 3 {
			return nil, &StructureError{Section: sectionID, Config: configID, Step: pos,
				Detail: "tuple-shaped step must have 1 to 3 elements"}
		}
		method, ok := v[0].(string)
		if !ok {
			return nil, &StructureError{Section: sectionID, Config: configID, Step: pos,
				Detail: fmt.Sprintf("step method identifier must be a string, got %T", v[0])}
		}
		step := &Step{Method: method}
		if len(v) > 1 {
			kwargs, err := asStringMap(v[1])
			if err != nil {
				return nil, &StructureError{Section: sectionID, Config: configID, Step: method,
					Detail: "step kwargs must be a mapping"}
			}
			step.Kwargs = kwargs
		}
		if len(v) > 2 {
			decors, ok := v[2].([]any)
			if !ok {
				return nil, &StructureError{Section: sectionID, Config: configID, Step: method,
					Detail: "step decorators must be a sequence"}
			}
			step.Decorators = decors
		}
		return step, nil
	case map[string]any:
		methodVal, present := v["method"]
		if !present {
			return nil, &StructureError{Section: sectionID, Config: configID, Step: pos,
				Detail: "step mapping missing method key"}
		}
		method, ok := methodVal.(string)
		if !ok {
			return nil, &StructureError{Section: sectionID, Config: configID, Step: pos,
				Detail: fmt.Sprintf("step method identifier must be a string, got %T", methodVal)}
		}
		step := &Step{Method: method}
		if kw, present := v["kwargs"]; present {
			kwargs, err := asStringMap(kw)
			if err != nil {
				return nil, &StructureError{Section: sectionID, Config: configID, Step: method,
					Detail: "step kwargs must be a mapping"}
			}
			step.Kwargs = kwargs
		}
		if dec, present := v["decorators"]; present {
			decors, ok := dec.([]any)
			if !ok {
				return nil, &StructureError{Section: sectionID, Config: configID, Step: method,
					Detail: "step decorators must be a sequence"}
			}
			step.Decorators = decors
		}
		return step, nil
	default:
		return nil, &StructureError{Section: sectionID, Config: configID, Step: pos,
			Detail: fmt.Sprintf("step must be a mapping or tuple-shaped sequence, got %T", raw)}
	}
}

// asStringMap coerces a raw value into a string-keyed map. YAML decoding can
// produce map[any]any; those are accepted when every key is a string.
func asStringMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, e := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			out[ks] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a mapping: %T", v)
	}
}

// intFromAny accepts the integer shapes loaders commonly produce.
func intFromAny(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
