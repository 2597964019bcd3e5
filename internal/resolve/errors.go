package resolve

import "fmt"

// AmbiguousReferenceError reports an unset argument that names a section
// with more than one sub-configuration and no explicit override choosing
// between them.
type AmbiguousReferenceError struct {
	Section string
	Config  string
	Step    string
	Kwarg   string
	Target  string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf(
		"multiple %q configurations provided, specify %q explicitly in %s__%s__%s__%s or %s__%s__global__%s",
		e.Target, e.Kwarg,
		e.Section, e.Config, e.Step, e.Kwarg,
		e.Section, e.Config, e.Kwarg,
	)
}
