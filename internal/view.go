package internal

// View is a piece of UI state that renders into host nodes.
//
// Build is called exactly once before React or Raze. React is only called by
// the scheduler, after a dependency recorded in the scope passed to SetScope
// changed, and must update existing nodes in place. Raze is called once and
// must release every node the view created.
type View interface {
	Nodes() NodeSpan
	Build(owner NodeID, w *World)
	React(owner NodeID, w *World, scope *TrackingScope)
	Raze(owner NodeID, w *World)
}

// SpawnView registers v on a new node under parent and builds it right away.
func (w *World) SpawnView(v View, parent NodeID) NodeID {
	id := w.CreateNode(parent)
	w.register(id, nil, v)
	w.BuildView(id)
	return id
}

// AddRootView registers v on a new root node. It is built during the next
// build phase.
func (w *World) AddRootView(v View) NodeID {
	id := w.CreateNode(NoNode)
	w.register(id, nil, v)
	w.added = append(w.added, id)
	return id
}

// BuildAddedViews builds the root views added since the last build phase.
func (w *World) BuildAddedViews() int {
	added := w.added
	w.added = nil

	built := 0
	for _, id := range added {
		if w.State(id) != Fresh {
			continue
		}
		w.BuildView(id)
		built++
	}
	return built
}

func (w *World) viewSlot(id NodeID) *reactionSlot {
	s, ok := w.slots[id]
	if !ok || s.view == nil {
		w.fatalf(ErrUnknownNode, "no view on node %d", id)
	}
	return s
}

// BuildView builds the fresh view registered on id. A view whose Build
// panics is destroyed along with whatever it had created.
func (w *World) BuildView(id NodeID) {
	s := w.viewSlot(id)
	if s.state != Fresh {
		w.fatalf(ErrAlreadyBuilt, "view on node %d is %s", id, s.state)
	}

	w.guard(id, func() {
		s.running = true
		defer func() { s.running = false }()

		s.view.Build(id, w)
	})
	s.state = Active

	w.metrics.viewBuilt()
	w.log.Debug().Uint64("node", uint64(id)).Msg("built view")
}

// RazeView razes the view on id and destroys its node. Razing a view that is
// already gone is a no-op, razing one that was never built is fatal.
func (w *World) RazeView(id NodeID) {
	s, ok := w.slots[id]
	if !ok {
		return
	}
	if s.view == nil {
		w.fatalf(ErrUnknownNode, "no view on node %d", id)
	}

	switch s.state {
	case Fresh:
		w.fatalf(ErrNotBuilt, "razing view on node %d", id)
	case Razed:
		return
	}

	w.razeSlot(s)
	w.DestroyOwned(id)

	w.log.Debug().Uint64("node", uint64(id)).Msg("razed view")
}

// ViewNodes returns the span rendered by the view on id.
func (w *World) ViewNodes(id NodeID) NodeSpan {
	s := w.viewSlot(id)
	if s.state == Fresh {
		return EmptySpan()
	}
	return s.view.Nodes()
}

// RequireParent is the precondition of views that must be nested.
func (w *World) RequireParent(id NodeID, what string) NodeID {
	parent, ok := w.host.Parent(id)
	if !ok {
		w.fatalf(ErrNoParent, "%s on node %d", what, id)
	}
	return parent
}
