package reactor

import (
	"slices"

	"github.com/AnatoleLucet/reactor/internal"
)

// Component is a typed value ready to be stored on a node.
type Component interface {
	key() internal.TypeKey
	insert(w *World, target NodeID)
}

type component[T any] struct {
	value T
}

func (c component[T]) key() internal.TypeKey {
	return internal.KeyOf[T]()
}

func (c component[T]) insert(w *World, target NodeID) {
	InsertComponent(w, target, c.value)
}

// C wraps v for use in a Bundle.
func C[T any](v T) Component {
	return component[T]{value: v}
}

// Bundle is a set of components inserted together, in order.
type Bundle []Component

func (b Bundle) InsertInto(w *World, target NodeID) {
	for _, c := range b {
		c.insert(w, target)
	}
}

// BundleProducer inserts a bundle into a target node.
type BundleProducer interface {
	// Start inserts the bundle into target. Any reaction it needs is owned by
	// owner and goes away with it.
	Start(owner, target NodeID, w *World)
}

// BundleStatic inserts a fixed bundle once.
type BundleStatic struct {
	bundle  Bundle
	started bool
}

func StaticBundle(components ...Component) *BundleStatic {
	return &BundleStatic{bundle: components}
}

func (b *BundleStatic) Start(_, target NodeID, w *World) {
	if b.started {
		w.Fatalf(ErrAlreadyStarted, "static bundle on node %d", target)
	}
	b.started = true

	b.bundle.InsertInto(w, target)
}

// BundleComputed recomputes its bundle whenever what the factory reads
// changes. Its state lives in a reaction on the world; the producer only
// keeps the reaction's node and talks to it by posting requests.
type BundleComputed struct {
	factory  func(cx *Cx) Bundle
	reaction NodeID
}

func ComputedBundle(factory func(cx *Cx) Bundle) *BundleComputed {
	return &BundleComputed{factory: factory}
}

func (b *BundleComputed) Start(owner, target NodeID, w *World) {
	if b.reaction != NoNode {
		w.Fatalf(ErrAlreadyStarted, "computed bundle on node %d", target)
	}

	b.reaction = w.SpawnReaction(&bundleReaction{target: target, factory: b.factory}, owner)
}

// Reaction returns the node of the reaction, NoNode before Start.
func (b *BundleComputed) Reaction() NodeID {
	return b.reaction
}

// Refresh asks for the bundle to be recomputed on the next scheduler pass.
func (b *BundleComputed) Refresh(w *World) {
	w.Post(b.reaction, Request{Intent: IntentRerun})
}

// Stop asks for the reaction to be torn down on the next scheduler pass.
func (b *BundleComputed) Stop(w *World) {
	w.Post(b.reaction, Request{Intent: IntentRaze})
}

type bundleReaction struct {
	target  NodeID
	factory func(cx *Cx) Bundle

	// component types inserted by the last run
	inserted []internal.TypeKey
}

// React does nothing once the target is gone. Nothing is tracked then, so
// the reaction is not rerun until a request asks for it.
func (r *bundleReaction) React(owner NodeID, w *World, scope *TrackingScope) {
	if !w.Host().Contains(r.target) {
		return
	}

	bundle := r.factory(NewCx(w, owner, scope))
	bundle.InsertInto(w, r.target)

	keys := make([]internal.TypeKey, 0, len(bundle))
	for _, c := range bundle {
		keys = append(keys, c.key())
	}

	// drop what the previous bundle had and this one doesn't
	for _, key := range r.inserted {
		if !slices.Contains(keys, key) {
			w.Host().RemoveComponent(r.target, key)
		}
	}
	r.inserted = keys
}

// Cleanup takes the last bundle off the target, if the target is still there.
func (r *bundleReaction) Cleanup(_ NodeID, w *World) {
	if !w.Host().Contains(r.target) {
		return
	}

	for _, key := range r.inserted {
		w.Host().RemoveComponent(r.target, key)
	}
	r.inserted = nil
}
