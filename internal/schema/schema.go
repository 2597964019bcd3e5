// Package schema holds the HCL block structures a configuration tree file
// decodes into, before translation into the format-agnostic model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File represents the top-level structure of a tree file.
type File struct {
	Globals []*GlobalBlock `hcl:"global,block"`
	Configs []*ConfigBlock `hcl:"config,block"`
}

// GlobalBlock is an override map at any level; its attributes are the
// override entries.
type GlobalBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// ConfigBlock is one sub-configuration: `config "section" "name" { ... }`.
// Attributes not named here are shorthand overrides and flow into the
// sub-configuration's global map.
type ConfigBlock struct {
	Section     string         `hcl:"section,label"`
	Name        string         `hcl:"name,label"`
	Producer    *string        `hcl:"producer,optional"`
	Priority    *int           `hcl:"priority,optional"`
	Init        hcl.Expression `hcl:"init,optional"`
	InitFactory *string        `hcl:"init_factory,optional"`
	Globals     []*GlobalBlock `hcl:"global,block"`
	Patch       *PatchBlock    `hcl:"patch,block"`
	Steps       []*StepBlock   `hcl:"step,block"`
	Remain      hcl.Body       `hcl:",remain"`
}

// PatchBlock maps method names to alias strings or registered step
// implementation names.
type PatchBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// StepBlock is one build step: `step "method" { ... }`. Its attributes are
// the step kwargs, except the reserved `decorators` list.
type StepBlock struct {
	Method string   `hcl:"method,label"`
	Body   hcl.Body `hcl:",remain"`
}
