// Package store provides the shared, run-scoped objects store. Built objects
// are inserted once under their composite id and never mutated afterwards;
// that insert-once discipline is what would make concurrent builds of
// independent sub-configurations safe in the future.
package store

import (
	"sort"
	"sync"
)

// Object is the envelope a built result is stored in. ID always carries the
// composite id the object was stored under.
type Object struct {
	ID    string
	Value any
}

// Store maps composite ids to built objects. A mutex guards the map so that
// callers inspecting a finished store from other goroutines stay safe; the
// build loop itself is strictly sequential.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*Object
}

// New creates an empty store.
func New() *Store {
	return &Store{objects: make(map[string]*Object)}
}

// NewSeeded creates a store pre-populated with caller-supplied objects.
func NewSeeded(seed map[string]any) *Store {
	s := New()
	for id, v := range seed {
		s.objects[id] = &Object{ID: id, Value: v}
	}
	return s
}

// Put stores a value under id, wrapping it in its envelope. It reports
// whether an existing entry was replaced so the caller can warn.
func (s *Store) Put(id string, v any) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, replaced = s.objects[id]
	s.objects[id] = &Object{ID: id, Value: v}
	return replaced
}

// Get returns the stored value for id.
func (s *Store) Get(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok {
		return nil, false
	}
	return obj.Value, true
}

// Object returns the stored envelope for id.
func (s *Store) Object(id string) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	return obj, ok
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[id]
	return ok
}

// IDs returns all stored ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
