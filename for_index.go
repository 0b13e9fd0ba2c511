package reactor

import "iter"

type indexedListItem[Item any] struct {
	id    NodeID
	view  View
	value Item
}

// ForIndex renders one child view per item of a reactive sequence. Children
// are matched to items by position: a child is rebuilt only when the item at
// its position changed. Inserting or removing in the middle of the sequence
// rebuilds every later position.
type ForIndex[Item any] struct {
	itemFn func(cx *Cx) iter.Seq[Item]
	eachFn func(item Item, index int) View
	equal  func(a, b Item) bool

	items []indexedListItem[Item]

	fallback     func() View
	fallbackView View
	fallbackID   NodeID
}

// For creates a ForIndex over comparable items.
func For[Item comparable](items func(cx *Cx) iter.Seq[Item], each func(item Item, index int) View) *ForIndex[Item] {
	return ForFunc(items, each, comparableEqual[Item])
}

// ForFunc creates a ForIndex whose items are compared with equal.
func ForFunc[Item any](
	items func(cx *Cx) iter.Seq[Item],
	each func(item Item, index int) View,
	equal func(a, b Item) bool,
) *ForIndex[Item] {
	return &ForIndex[Item]{
		itemFn: items,
		eachFn: each,
		equal:  equal,
	}
}

// WithFallback sets the view shown while there are no items. fallback is
// called each time the list becomes empty.
func (f *ForIndex[Item]) WithFallback(fallback func() View) *ForIndex[Item] {
	f.fallback = fallback
	return f
}

// Len returns the number of reconciled items.
func (f *ForIndex[Item]) Len() int {
	return len(f.items)
}

func (f *ForIndex[Item]) Nodes() NodeSpan {
	spans := make([]NodeSpan, 0, len(f.items)+1)
	for _, item := range f.items {
		spans = append(spans, item.view.Nodes())
	}
	if f.fallbackID != NoNode {
		spans = append(spans, f.fallbackView.Nodes())
	}
	return FragmentSpan(spans...)
}

func (f *ForIndex[Item]) Build(owner NodeID, w *World) {
	w.RequireParent(owner, "ForIndex")

	scope := w.BeginScope(owner)
	f.React(owner, w, scope)
}

func (f *ForIndex[Item]) React(owner NodeID, w *World, scope *TrackingScope) {
	seq := f.itemFn(NewCx(w, owner, scope))
	prevLen := len(f.items)
	changed := false

	index := 0
	for item := range seq {
		if index < prevLen {
			// overwrite existing items
			entry := &f.items[index]
			if !f.equal(item, entry.value) {
				w.RazeView(entry.id)
				entry.value = item
				entry.view = f.eachFn(item, index)
				entry.id = w.SpawnView(entry.view, owner)
				changed = true
			}
		} else {
			view := f.eachFn(item, index)
			f.items = append(f.items, indexedListItem[Item]{
				id:    w.SpawnView(view, owner),
				view:  view,
				value: item,
			})
			changed = true
		}
		index++
	}

	// raze surplus items, last first
	for prevLen > index {
		prevLen--
		w.RazeView(f.items[prevLen].id)
		f.items = f.items[:prevLen]
		changed = true
	}

	if f.fallback != nil {
		switch {
		case index > 0 && f.fallbackID != NoNode:
			w.RazeView(f.fallbackID)
			f.fallbackID, f.fallbackView = NoNode, nil
			changed = true
		case index == 0 && f.fallbackID == NoNode:
			f.fallbackView = f.fallback()
			f.fallbackID = w.SpawnView(f.fallbackView, owner)
			changed = true
		}
	}

	if changed {
		InsertComponent(w, owner, DisplayNodeChanged{})
	}
}

func (f *ForIndex[Item]) Raze(owner NodeID, w *World) {
	for _, entry := range f.items {
		w.RazeView(entry.id)
	}
	f.items = nil

	if f.fallbackID != NoNode {
		w.RazeView(f.fallbackID)
		f.fallbackID, f.fallbackView = NoNode, nil
	}
}
