package internal

import "reflect"

// NodeID identifies a node in the host graph. The zero value is never a live node.
type NodeID uint64

// NoNode is used where a node is optional, e.g. a root node has no parent.
const NoNode NodeID = 0

// Tick is the host's monotonically increasing change counter.
type Tick uint64

// TypeKey identifies a component or resource type.
type TypeKey = reflect.Type

// KeyOf returns the storage key of T.
func KeyOf[T any]() TypeKey {
	return reflect.TypeFor[T]()
}

// Host is what the reactive core needs from the scene graph it runs on.
type Host interface {
	CreateNode(parent NodeID) NodeID
	// DestroySubtree destroys id and all its descendants, deepest first,
	// calling every destroy hook for each node before it is removed.
	// Destroying an unknown node is a no-op.
	DestroySubtree(id NodeID)
	AttachChild(parent, child NodeID)
	Parent(id NodeID) (NodeID, bool)
	Children(id NodeID) []NodeID
	Contains(id NodeID) bool

	Component(id NodeID, key TypeKey) (value any, changed Tick, ok bool)
	InsertComponent(id NodeID, key TypeKey, value any)
	RemoveComponent(id NodeID, key TypeKey) bool
	// ComponentRemovedAt reports the tick at which the component was last
	// removed from id, if it was.
	ComponentRemovedAt(id NodeID, key TypeKey) (Tick, bool)

	Resource(key TypeKey) (value any, changed Tick, ok bool)
	InsertResource(key TypeKey, value any)

	ChangeTick() Tick
	IncrementChangeTick() Tick

	OnDestroy(hook func(NodeID))
}
