package internal

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// World is the reactive runtime on top of a Host: it owns the mutable cells,
// the reaction slots and the per tick schedule.
type World struct {
	id   uuid.UUID
	host Host

	log     zerolog.Logger
	metrics *Metrics

	affinity affinity

	cells map[NodeID]*cell
	queue *CommitQueue

	slots map[NodeID]*reactionSlot
	// registration order of slots, pruned lazily
	order []NodeID

	// root views waiting for the build phase
	added []NodeID
}

type Option func(*World)

func WithLogger(l zerolog.Logger) Option {
	return func(w *World) { w.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(w *World) { w.metrics = m }
}

// WithAffinity makes using the world from a goroutine other than the one
// that created it a fatal error.
func WithAffinity(enabled bool) Option {
	return func(w *World) { w.affinity.enabled = enabled }
}

func NewWorld(host Host, opts ...Option) *World {
	w := &World{
		id:       uuid.New(),
		host:     host,
		log:      zerolog.Nop(),
		affinity: newAffinity(false),
		cells:    make(map[NodeID]*cell),
		queue:    NewCommitQueue(),
		slots:    make(map[NodeID]*reactionSlot),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With().Str("world", w.id.String()).Logger()

	host.OnDestroy(w.onDestroy)

	return w
}

func (w *World) ID() uuid.UUID {
	return w.id
}

func (w *World) Host() Host {
	return w.host
}

func (w *World) Logger() *zerolog.Logger {
	return &w.log
}

func (w *World) ChangeTick() Tick {
	return w.host.ChangeTick()
}

// CreateNode creates a host node under parent (or a root node for NoNode).
func (w *World) CreateNode(parent NodeID) NodeID {
	if parent != NoNode && !w.host.Contains(parent) {
		w.fatalf(ErrUnknownNode, "parent %d", parent)
	}
	return w.host.CreateNode(parent)
}

// DestroyNode destroys id and its subtree, cleaning up every reaction and
// view registered on the way.
func (w *World) DestroyNode(id NodeID) {
	w.host.DestroySubtree(id)
}

// DestroyOwned destroys the nodes owned by the scope of id, last created
// first, and then id's subtree.
func (w *World) DestroyOwned(id NodeID) {
	if s, ok := w.slots[id]; ok && s.scope != nil {
		w.destroyAll(s.scope.takeOwned())
	}
	w.host.DestroySubtree(id)
}

func (w *World) destroyAll(ids []NodeID) {
	for i := len(ids) - 1; i >= 0; i-- {
		w.host.DestroySubtree(ids[i])
	}
}

func (w *World) onDestroy(id NodeID) {
	w.metrics.nodeDestroyed()
	delete(w.cells, id)

	s, ok := w.slots[id]
	if !ok {
		return
	}

	if s.state == Active {
		w.razeSlot(s)
	}
	if s.scope != nil {
		w.destroyAll(s.scope.takeOwned())
	}

	delete(w.slots, id)
	w.metrics.slots(len(w.slots))
}

// Update runs one tick: commit, build added views, run reactions.
func (w *World) Update() {
	w.checkAffinity("update")

	changed := w.Commit()
	built := w.BuildAddedViews()
	ran := w.RunReactions()

	w.log.Debug().
		Int("changed", changed).
		Int("built", built).
		Int("ran", ran).
		Msg("update")
}
