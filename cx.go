package reactor

import "github.com/AnatoleLucet/reactor/internal"

// Cx is handed to the body of a reaction. Every read through it is recorded
// in the reaction's tracking scope.
type Cx struct {
	world *World
	scope *TrackingScope
	owner NodeID
	tick  Tick
}

// NewCx binds a context to one invocation of the reaction on owner.
func NewCx(w *World, owner NodeID, scope *TrackingScope) *Cx {
	return &Cx{world: w, scope: scope, owner: owner, tick: scope.Tick()}
}

// Untracked returns a context whose reads are not recorded anywhere.
func Untracked(w *World) *Cx {
	return &Cx{world: w, tick: w.ChangeTick()}
}

func (cx *Cx) World() *World {
	return cx.world
}

// Owner is the node of the reaction being run, NoNode for untracked contexts.
func (cx *Cx) Owner() NodeID {
	return cx.owner
}

// Tick is the host tick the invocation started at.
func (cx *Cx) Tick() Tick {
	return cx.tick
}

func (cx *Cx) Tracked() bool {
	return cx.scope != nil
}

// CreateMutable creates a cell owned by the running reaction: it is
// destroyed when the reaction is razed. From an Untracked context the cell has
// no owner and lives until its node is destroyed, like NewMutable.
func CreateMutable[T comparable](cx *Cx, initial T) Mutable[T] {
	return CreateMutableFunc(cx, initial, comparableEqual[T])
}

// CreateMutableFunc is CreateMutable for values compared with equal.
func CreateMutableFunc[T any](cx *Cx, initial T, equal func(a, b T) bool) Mutable[T] {
	return Mutable[T]{
		id: cx.world.CreateCell(cx.scope, initial, internal.KeyOf[T](), typedEqual(equal)),
	}
}

// UseResource returns the global T and tracks it. A missing resource is fatal.
func UseResource[T any](cx *Cx) T {
	key := internal.KeyOf[T]()

	v, _, ok := cx.world.Host().Resource(key)
	if !ok {
		cx.world.Fatalf(ErrUnknownResource, "%v", key)
	}

	if cx.scope != nil {
		cx.scope.AddResource(key)
	}
	return as[T](v)
}

// UseComponent returns the T stored on id and tracks it, including its
// absence.
func UseComponent[T any](cx *Cx, id NodeID) (T, bool) {
	key := internal.KeyOf[T]()
	if !cx.world.Host().Contains(id) {
		cx.world.Fatalf(ErrUnknownNode, "node %d", id)
	}

	if cx.scope != nil {
		cx.scope.AddComponent(id, key)
	}
	return GetComponent[T](cx.world, id)
}
