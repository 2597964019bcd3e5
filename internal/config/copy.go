package config

// DeepCopy returns a structural copy of a configuration value. Maps and
// slices are copied recursively; scalars, functions and other opaque values
// are copied by assignment. The copy shares nothing mutable with the source
// for the map/slice shapes configuration values are made of.
func DeepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = DeepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = DeepCopy(e)
		}
		return out
	default:
		return v
	}
}

// CopyMap deep-copies a string-keyed map, returning nil for nil input.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return DeepCopy(m).(map[string]any)
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	out := &Step{Method: s.Method, Kwargs: CopyMap(s.Kwargs)}
	if s.Decorators != nil {
		out.Decorators = make([]any, len(s.Decorators))
		copy(out.Decorators, s.Decorators)
	}
	return out
}

// Clone returns a deep copy of the sub-configuration.
func (c *SubConfig) Clone() *SubConfig {
	out := &SubConfig{
		Init:     DeepCopy(c.Init),
		Producer: c.Producer,
		Patch:    CopyMap(c.Patch),
		Global:   CopyMap(c.Global),
		Extra:    CopyMap(c.Extra),
	}
	if c.Priority != nil {
		p := *c.Priority
		out.Priority = &p
	}
	if c.Steps != nil {
		out.Steps = make([]*Step, len(c.Steps))
		for i, st := range c.Steps {
			out.Steps[i] = st.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the section, preserving insertion order.
func (s *Section) Clone() *Section {
	out := NewSection()
	out.Global = CopyMap(s.Global)
	for _, id := range s.order {
		out.Set(id, s.configs[id].Clone())
	}
	return out
}

// Clone returns a deep copy of the whole tree.
func (t *Tree) Clone() *Tree {
	out := NewTree()
	out.Global = CopyMap(t.Global)
	for id, sec := range t.Sections {
		out.Sections[id] = sec.Clone()
	}
	return out
}
