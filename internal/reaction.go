package internal

// Reaction is a computation the scheduler reruns when something it read
// changes.
type Reaction interface {
	// React runs the reaction, recording what it reads into scope.
	React(owner NodeID, w *World, scope *TrackingScope)

	// Cleanup releases whatever the reaction created. It is called once.
	Cleanup(owner NodeID, w *World)
}

type Lifecycle int

const (
	Fresh Lifecycle = iota
	Active
	Razed
)

func (l Lifecycle) String() string {
	switch l {
	case Fresh:
		return "fresh"
	case Active:
		return "active"
	case Razed:
		return "razed"
	default:
		return "unknown"
	}
}

type Intent int

const (
	// IntentRerun reruns the reaction on the next scheduler pass, whether or
	// not its dependencies changed.
	IntentRerun Intent = iota
	// IntentRaze tears the reaction down on the next scheduler pass.
	IntentRaze
)

// Request is a message posted to a reaction slot.
type Request struct {
	Intent Intent
}

// reactionSlot is the single place a reaction or view lives. Nothing else
// holds its state; other parties talk to it through its mailbox.
type reactionSlot struct {
	id NodeID

	// exactly one of reaction and view is set
	reaction Reaction
	view     View

	scope *TrackingScope
	state Lifecycle

	// set while the slot's code is on the stack
	running bool

	inbox mailbox
}

func (s *reactionSlot) react(w *World, scope *TrackingScope) {
	if s.view != nil {
		s.view.React(s.id, w, scope)
		return
	}
	s.reaction.React(s.id, w, scope)
}

func (w *World) register(id NodeID, r Reaction, v View) *reactionSlot {
	s := &reactionSlot{id: id, reaction: r, view: v}
	w.slots[id] = s
	w.order = append(w.order, id)
	w.metrics.slots(len(w.slots))
	return s
}

// SpawnReaction registers r on a new node under owner and runs it once.
func (w *World) SpawnReaction(r Reaction, owner NodeID) NodeID {
	id := w.CreateNode(owner)
	s := w.register(id, r, nil)

	w.guard(id, func() {
		w.invoke(s)
	})
	s.state = Active

	return id
}

// guard destroys the partially constructed subtree of id if fn panics.
func (w *World) guard(id NodeID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.host.DestroySubtree(id)
			panic(r)
		}
	}()

	fn()
}

// invoke runs the slot with a brand new scope, which replaces the previous
// one.
func (w *World) invoke(s *reactionSlot) {
	if s.running {
		w.fatalf(ErrReentrant, "slot %d", s.id)
	}
	s.running = true
	defer func() { s.running = false }()

	next := NewTrackingScope(w.host.ChangeTick())
	next.adopt(s.scope)
	s.scope = next

	s.react(w, next)
}

func (w *World) razeSlot(s *reactionSlot) {
	s.state = Razed

	if s.view != nil {
		s.view.Raze(s.id, w)
		w.metrics.viewRazed()
		return
	}
	s.reaction.Cleanup(s.id, w)
}

// Post sends r to the slot registered on id. Requests to slots that are gone
// are dropped.
func (w *World) Post(id NodeID, r Request) {
	s, ok := w.slots[id]
	if !ok || s.state == Razed {
		w.log.Debug().Uint64("node", uint64(id)).Msg("dropped request to razed reaction")
		return
	}
	s.inbox.post(r)
}

// Scope returns the current tracking scope of the slot on id.
func (w *World) Scope(id NodeID) (*TrackingScope, bool) {
	s, ok := w.slots[id]
	if !ok || s.scope == nil {
		return nil, false
	}
	return s.scope, true
}

// SetScope attaches scope to the slot on id, making it eligible for reruns.
// Views call it from Build.
func (w *World) SetScope(id NodeID, scope *TrackingScope) {
	s, ok := w.slots[id]
	if !ok {
		w.fatalf(ErrUnknownNode, "no reaction on node %d", id)
	}
	scope.adopt(s.scope)
	s.scope = scope
}

// BeginScope attaches a new scope to the slot on id and returns it. Nodes the
// caller creates through it are released even if the caller panics before
// it is done.
func (w *World) BeginScope(id NodeID) *TrackingScope {
	scope := NewTrackingScope(w.host.ChangeTick())
	w.SetScope(id, scope)
	return scope
}

// State reports the lifecycle state of the slot on id. Slots that were
// destroyed report Razed.
func (w *World) State(id NodeID) Lifecycle {
	s, ok := w.slots[id]
	if !ok {
		return Razed
	}
	return s.state
}

// Reactions returns the number of live slots.
func (w *World) Reactions() int {
	return len(w.slots)
}
