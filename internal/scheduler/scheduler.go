// Package scheduler flattens a normalized tree into the totally ordered
// build plan the executor runs. Ordering is a stable sort by priority, then
// composite id: lower priority numbers execute earlier, and the id tie-break
// keeps runs deterministic. Priority zero excludes a sub-configuration from
// the plan.
package scheduler

import (
	"sort"

	"github.com/vk/objforge/internal/config"
)

// Entry is one scheduled sub-configuration.
type Entry struct {
	Priority int
	OID      string
	Config   *config.SubConfig
}

// Arrange produces the ordered build plan. It fails with a PriorityError for
// a negative or unset priority and with a DuplicateIDError when two
// sub-configurations collide on the same composite id.
func Arrange(tree *config.Tree) ([]Entry, error) {
	var entries []Entry
	for sectionID, section := range tree.Sections {
		for _, configID := range section.IDs() {
			conf, _ := section.Get(configID)
			oid := config.CompositeID(sectionID, configID)
			if conf.Priority == nil {
				return nil, &PriorityError{OID: oid, Detail: "priority not set"}
			}
			priority := *conf.Priority
			if priority < 0 {
				return nil, &PriorityError{OID: oid, Priority: priority, Detail: "priority must be non-negative"}
			}
			if priority == 0 {
				continue
			}
			entries = append(entries, Entry{Priority: priority, OID: oid, Config: conf})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].OID < entries[j].OID
	})

	if dups := duplicates(entries); len(dups) > 0 {
		return nil, &DuplicateIDError{IDs: dups}
	}
	return entries, nil
}

func duplicates(entries []Entry) []string {
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		seen[e.OID]++
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}
