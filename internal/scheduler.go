package internal

// RunReactions reruns every active slot whose dependencies changed since its
// scope was recorded, or that has pending requests. Slots registered while
// the pass is running wait for the next one. It returns the number of reruns.
func (w *World) RunReactions() int {
	w.checkAffinity("run reactions")

	ids := w.prune()
	ran := 0

	for _, id := range ids {
		s, ok := w.slots[id]
		if !ok || s.state != Active || s.running {
			continue
		}

		rerun, raze := false, false
		for _, r := range s.inbox.drain() {
			switch r.Intent {
			case IntentRerun:
				rerun = true
			case IntentRaze:
				raze = true
			}
		}

		if raze {
			w.razeSlot(s)
			w.DestroyOwned(id)
			continue
		}

		if !rerun && (s.scope == nil || !s.scope.changed(w)) {
			continue
		}

		w.invoke(s)
		w.metrics.reactionRun()
		ran++
	}

	return ran
}

// prune drops destroyed slots from the run order and returns a snapshot of it.
func (w *World) prune() []NodeID {
	live := w.order[:0]
	for _, id := range w.order {
		if _, ok := w.slots[id]; ok {
			live = append(live, id)
		}
	}
	w.order = live

	ids := make([]NodeID, len(live))
	copy(ids, live)
	return ids
}
