package executor

import "fmt"

// MissingReferenceError reports a name that could not be resolved at build
// time: an unknown method, patch target, decorator, codec, seed factory, or
// injected collaborator id.
type MissingReferenceError struct {
	OID  string
	Kind string
	Name string
}

func (e *MissingReferenceError) Error() string {
	if e.OID == "" {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: unknown %s %q", e.OID, e.Kind, e.Name)
}

// ProducerConstructionError reports a factory that is not registered, failed,
// or returned something that is not a producer.
type ProducerConstructionError struct {
	OID      string
	Producer string
	Reason   string
}

func (e *ProducerConstructionError) Error() string {
	return fmt.Sprintf("%s: cannot construct producer %q: %s", e.OID, e.Producer, e.Reason)
}
