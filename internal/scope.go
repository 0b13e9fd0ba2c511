package internal

import (
	"iter"
	"maps"
	"slices"
)

// ComponentDep is a tracked (node, component type) pair.
type ComponentDep struct {
	Node NodeID
	Key  TypeKey
}

// TrackingScope records what one run of a reaction read, and which nodes the
// reaction owns.
type TrackingScope struct {
	mutables   map[NodeID]struct{}
	resources  map[TypeKey]struct{}
	components map[ComponentDep]struct{}

	// destroyed together with the reaction, last created first
	owned []NodeID

	// host tick at which the scope was created
	tick Tick
}

func NewTrackingScope(tick Tick) *TrackingScope {
	return &TrackingScope{
		mutables:   make(map[NodeID]struct{}),
		resources:  make(map[TypeKey]struct{}),
		components: make(map[ComponentDep]struct{}),
		tick:       tick,
	}
}

func (s *TrackingScope) Tick() Tick {
	return s.tick
}

func (s *TrackingScope) AddMutable(id NodeID) {
	s.mutables[id] = struct{}{}
}

func (s *TrackingScope) AddResource(key TypeKey) {
	s.resources[key] = struct{}{}
}

func (s *TrackingScope) AddComponent(id NodeID, key TypeKey) {
	s.components[ComponentDep{Node: id, Key: key}] = struct{}{}
}

func (s *TrackingScope) AddOwned(id NodeID) {
	s.owned = append(s.owned, id)
}

// Mutables iterates over tracked cells in ascending id order.
func (s *TrackingScope) Mutables() iter.Seq[NodeID] {
	return slices.Values(slices.Sorted(maps.Keys(s.mutables)))
}

func (s *TrackingScope) Resources() iter.Seq[TypeKey] {
	return maps.Keys(s.resources)
}

func (s *TrackingScope) Components() iter.Seq[ComponentDep] {
	return maps.Keys(s.components)
}

func (s *TrackingScope) Owned() []NodeID {
	return slices.Clone(s.owned)
}

func (s *TrackingScope) HasMutable(id NodeID) bool {
	_, ok := s.mutables[id]
	return ok
}

func (s *TrackingScope) HasResource(key TypeKey) bool {
	_, ok := s.resources[key]
	return ok
}

func (s *TrackingScope) HasComponent(id NodeID, key TypeKey) bool {
	_, ok := s.components[ComponentDep{Node: id, Key: key}]
	return ok
}

// Len returns the number of tracked dependencies.
func (s *TrackingScope) Len() int {
	return len(s.mutables) + len(s.resources) + len(s.components)
}

// adopt takes over the owned nodes of a replaced scope. Dependencies are not
// carried over.
func (s *TrackingScope) adopt(prev *TrackingScope) {
	if prev == nil {
		return
	}
	s.owned = append(slices.Clone(prev.owned), s.owned...)
	prev.owned = nil
}

// takeOwned empties the owned list and returns it.
func (s *TrackingScope) takeOwned() []NodeID {
	owned := s.owned
	s.owned = nil
	return owned
}

// changed reports whether anything the scope read changed after it was
// created.
func (s *TrackingScope) changed(w *World) bool {
	for id := range s.mutables {
		if w.cellChangedSince(id, s.tick) {
			return true
		}
	}

	for key := range s.resources {
		if _, t, ok := w.host.Resource(key); ok && t > s.tick {
			return true
		}
	}

	for dep := range s.components {
		if _, t, ok := w.host.Component(dep.Node, dep.Key); ok {
			if t > s.tick {
				return true
			}
			continue
		}
		if t, ok := w.host.ComponentRemovedAt(dep.Node, dep.Key); ok && t > s.tick {
			return true
		}
	}

	return false
}
