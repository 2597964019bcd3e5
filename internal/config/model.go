package config

// Structural keys of a sub-configuration. Any other key found on a raw
// sub-configuration is collected into Extra and later absorbed into the
// sub-configuration's Global map by the resolver.
const (
	KeyInit     = "init"
	KeyProducer = "producer"
	KeyPatch    = "patch"
	KeySteps    = "steps"
	KeyGlobal   = "global"
	KeyPriority = "priority"
)

// KeyInitFactory is the raw-tree spelling of a SeedRef init: its string
// value names a registered seed factory.
const KeyInitFactory = "init_factory"

// BaseProducer is the registry key of the built-in producer factory, used
// when a sub-configuration names no producer of its own.
const BaseProducer = "base"

// InitMethod is the reserved step name whose kwargs become constructor
// arguments for the producer instead of being invoked as a regular step.
const InitMethod = "__init__"

// SeedRef names a registered seed factory. A plain string in an init slot is
// a literal seed value; a SeedRef is resolved through the registry and
// invoked to produce the seed.
type SeedRef string

// CompositeID forms the identifier under which a section's sub-configuration
// stores its built object.
func CompositeID(sectionID, configID string) string {
	return sectionID + "__" + configID
}

// Tree is the whole configuration: sections of sub-configurations plus an
// optional tree-level global override map.
type Tree struct {
	Global   map[string]any
	Sections map[string]*Section
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Sections: make(map[string]*Section)}
}

// Section returns the named section, creating it if absent.
func (t *Tree) Section(id string) *Section {
	if t.Sections == nil {
		t.Sections = make(map[string]*Section)
	}
	s, ok := t.Sections[id]
	if !ok {
		s = NewSection()
		t.Sections[id] = s
	}
	return s
}

// Has reports whether the named section exists.
func (t *Tree) Has(id string) bool {
	_, ok := t.Sections[id]
	return ok
}

// Section is an ordered collection of named sub-configurations with an
// optional section-level global override map. Insertion order is preserved
// because default merging falls back to the first sub-configuration of a
// default section.
type Section struct {
	Global map[string]any

	order   []string
	configs map[string]*SubConfig
}

// NewSection returns an empty section.
func NewSection() *Section {
	return &Section{configs: make(map[string]*SubConfig)}
}

// Set stores a sub-configuration under id, appending it to the section order
// if the id is new. It returns the section for chaining.
func (s *Section) Set(id string, c *SubConfig) *Section {
	if _, ok := s.configs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.configs[id] = c
	return s
}

// Get returns the sub-configuration stored under id.
func (s *Section) Get(id string) (*SubConfig, bool) {
	c, ok := s.configs[id]
	return c, ok
}

// IDs returns the sub-configuration ids in insertion order.
func (s *Section) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of sub-configurations in the section.
func (s *Section) Len() int {
	return len(s.configs)
}

// SubConfig describes how to build one object. Nil fields mean "not set";
// the normalizer fills them from the default tree or from built-in defaults,
// after which all six structural fields are non-nil.
type SubConfig struct {
	// Init is the seed value: a literal, a func() any / func() (any, error)
	// factory, or a SeedRef naming a registered seed factory.
	Init any

	// Producer is the registry key of the factory that builds the producer
	// instance. Empty means not set.
	Producer string

	// Patch maps method names to implementations bound onto the producer's
	// method table: a StepFunc-shaped function, or a string aliasing an
	// existing method (resolved against the base table first) or naming a
	// registered step implementation.
	Patch map[string]any

	// Steps is the ordered list of build steps.
	Steps []*Step

	// Global is the sub-configuration's override map.
	Global map[string]any

	// Priority orders execution; zero excludes the sub-configuration from
	// execution entirely. Nil means not set (defaults to 1).
	Priority *int

	// Extra holds unknown raw keys awaiting absorption into Global.
	Extra map[string]any
}

// Step is one ordered build operation: a method name, its arguments, and a
// chain of wrapper functions applied around the call (first entry innermost).
type Step struct {
	Method string
	Kwargs map[string]any

	// Decorators entries are decorator functions (in-code trees) or strings
	// naming registered decorators (file-loaded trees).
	Decorators []any
}

// Priority is a convenience for literal sub-configurations.
func Priority(n int) *int {
	return &n
}
