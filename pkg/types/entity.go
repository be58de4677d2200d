package types

import (
	"maps"
	"slices"
)

// Entity is implemented by every stored record.
type Entity interface {
	// EntityID returns the store-assigned identifier, or "" before the
	// first save.
	EntityID() string
}

// member constrains the element type of association sets: pointer entity
// types, which are comparable by instance.
type member interface {
	comparable
	Entity
}

// SameEntity reports whether a and b denote the same entity: either they are
// the same instance, or both carry the same non-empty ID. An entity without
// an ID is equal only to itself. Nil is equal to nothing.
func SameEntity[E member](a, b E) bool {
	var zero E
	if a == zero || b == zero {
		return false
	}
	if a == b {
		return true
	}
	id := a.EntityID()
	return id != "" && id == b.EntityID()
}

// refSet is a set of entity references keyed by ID. Members saved after
// insertion are tracked by instance in unsaved until settle re-keys them.
// Entity IDs are assumed immutable once assigned.
type refSet[E member] struct {
	byID    map[string]E
	unsaved []E
}

// settle moves members that have acquired an ID into byID. A member whose ID
// is already present is dropped, keeping the first instance.
func (s *refSet[E]) settle() {
	if len(s.unsaved) == 0 {
		return
	}
	var zero E
	kept := s.unsaved[:0]
	for _, e := range s.unsaved {
		id := e.EntityID()
		if id == "" {
			kept = append(kept, e)
			continue
		}
		if s.byID == nil {
			s.byID = make(map[string]E)
		}
		if _, ok := s.byID[id]; !ok {
			s.byID[id] = e
		}
	}
	for i := len(kept); i < len(s.unsaved); i++ {
		s.unsaved[i] = zero
	}
	s.unsaved = kept
}

func (s *refSet[E]) indexOf(e E) int {
	return slices.Index(s.unsaved, e)
}

// get returns the stored member equal to e.
func (s *refSet[E]) get(e E) (E, bool) {
	s.settle()
	if id := e.EntityID(); id != "" {
		m, ok := s.byID[id]
		return m, ok
	}
	if i := s.indexOf(e); i >= 0 {
		return s.unsaved[i], true
	}
	var zero E
	return zero, false
}

func (s *refSet[E]) has(e E) bool {
	_, ok := s.get(e)
	return ok
}

// add inserts e unless an equal member is present. Reports whether the set
// changed.
func (s *refSet[E]) add(e E) bool {
	if s.has(e) {
		return false
	}
	if id := e.EntityID(); id != "" {
		if s.byID == nil {
			s.byID = make(map[string]E)
		}
		s.byID[id] = e
		return true
	}
	s.unsaved = append(s.unsaved, e)
	return true
}

// remove deletes the member equal to e and returns the stored instance,
// which may differ from e when both carry the same ID.
func (s *refSet[E]) remove(e E) (E, bool) {
	m, ok := s.get(e)
	if !ok {
		return m, false
	}
	if id := e.EntityID(); id != "" {
		delete(s.byID, id)
		return m, true
	}
	i := s.indexOf(e)
	s.unsaved = slices.Delete(s.unsaved, i, i+1)
	return m, true
}

func (s *refSet[E]) len() int {
	s.settle()
	return len(s.byID) + len(s.unsaved)
}

// items returns the members ordered by ID, followed by unsaved members in
// insertion order.
func (s *refSet[E]) items() []E {
	s.settle()
	out := make([]E, 0, len(s.byID)+len(s.unsaved))
	for _, id := range slices.Sorted(maps.Keys(s.byID)) {
		out = append(out, s.byID[id])
	}
	return append(out, s.unsaved...)
}

func (s *refSet[E]) clear() {
	s.byID = nil
	s.unsaved = nil
}
