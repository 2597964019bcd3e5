package config

import (
	"fmt"
	"strings"
)

// StructureError reports a malformed configuration shape: a step whose method
// identifier is not a string, kwargs that are not a mapping, decorators that
// are not a sequence, or a structural key of the wrong type. It names the
// offending section, sub-configuration and step where known.
type StructureError struct {
	Section string
	Config  string
	Step    string
	Detail  string
}

func (e *StructureError) Error() string {
	var b strings.Builder
	b.WriteString("malformed configuration")
	if e.Section != "" {
		fmt.Fprintf(&b, " at %s", e.Section)
		if e.Config != "" {
			fmt.Fprintf(&b, "__%s", e.Config)
		}
	}
	if e.Step != "" {
		fmt.Fprintf(&b, " step %q", e.Step)
	}
	fmt.Fprintf(&b, ": %s", e.Detail)
	return b.String()
}
