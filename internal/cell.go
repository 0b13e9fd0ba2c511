package internal

import "reflect"

type cell struct {
	value any
	typ   reflect.Type
	equal func(a, b any) bool

	pending *any // nil if no pending value

	changed   bool
	changedAt Tick
}

func (c *cell) stage(v any) (queued bool) {
	if c.equal(c.value, v) {
		// a write back to the committed value cancels the staged one
		c.pending = nil
		return false
	}

	queued = c.pending == nil
	c.pending = &v
	return queued
}

func (c *cell) commit(tick Tick) bool {
	if c.pending == nil {
		return false
	}

	c.value = *c.pending
	c.pending = nil
	c.changed = true
	c.changedAt = tick

	return true
}

// CreateCell creates a mutable cell holding initial. If owner is not nil the
// cell is destroyed together with the reaction owning that scope.
func (w *World) CreateCell(owner *TrackingScope, initial any, typ reflect.Type, equal func(a, b any) bool) NodeID {
	if equal == nil {
		equal = func(a, b any) bool { return a == b }
	}

	id := w.host.CreateNode(NoNode)
	w.cells[id] = &cell{value: initial, typ: typ, equal: equal}
	if owner != nil {
		owner.AddOwned(id)
	}

	return id
}

func (w *World) cell(id NodeID, typ reflect.Type) *cell {
	c, ok := w.cells[id]
	if !ok {
		w.fatalf(ErrUnknownCell, "mutable %d", id)
	}
	if c.typ != typ {
		w.fatalf(ErrTypeMismatch, "mutable %d holds %v, accessed as %v", id, c.typ, typ)
	}
	return c
}

// ReadCell returns the committed value of the cell, recording it as a
// dependency of scope when scope is not nil.
func (w *World) ReadCell(id NodeID, typ reflect.Type, scope *TrackingScope) any {
	c := w.cell(id, typ)
	if scope != nil {
		scope.AddMutable(id)
	}
	return c.value
}

// StageCell stages v as the next value of the cell. It becomes visible at the
// next commit.
func (w *World) StageCell(id NodeID, typ reflect.Type, v any) {
	w.checkAffinity("stage")

	c := w.cell(id, typ)
	if c.stage(v) {
		w.queue.Enqueue(id)
	}
}

// HasCell reports whether id is a live cell.
func (w *World) HasCell(id NodeID) bool {
	_, ok := w.cells[id]
	return ok
}

// CellChanged reports whether the last commit changed the cell.
func (w *World) CellChanged(id NodeID) bool {
	c, ok := w.cells[id]
	return ok && c.changed
}

func (w *World) cellChangedSince(id NodeID, tick Tick) bool {
	c, ok := w.cells[id]
	return ok && c.changed && c.changedAt > tick
}

// Commit makes every staged write visible. It runs once per tick before any
// reaction.
func (w *World) Commit() int {
	w.checkAffinity("commit")

	tick := w.host.IncrementChangeTick()
	n := w.queue.Commit(w.cells, tick)

	w.metrics.commit(n)
	if n > 0 {
		w.log.Debug().Int("changed", n).Uint64("tick", uint64(tick)).Msg("committed mutables")
	}

	return n
}
