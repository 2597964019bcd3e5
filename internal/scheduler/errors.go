package scheduler

import (
	"fmt"
	"strings"
)

// PriorityError reports a priority that is unset or negative.
type PriorityError struct {
	OID      string
	Priority int
	Detail   string
}

func (e *PriorityError) Error() string {
	return fmt.Sprintf("%s: invalid priority %d: %s", e.OID, e.Priority, e.Detail)
}

// DuplicateIDError reports composite ids produced by more than one
// sub-configuration.
type DuplicateIDError struct {
	IDs []string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("non-unique configuration ids: %s", strings.Join(e.IDs, ", "))
}
