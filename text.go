package reactor

// TextContent is the component carried by text display nodes.
type TextContent struct {
	Value string
}

// TextStatic displays a fixed string.
type TextStatic struct {
	// the display node, NoNode until built
	node NodeID

	text string
}

// Text creates a static text view.
func Text(text string) *TextStatic {
	return &TextStatic{text: text}
}

func (t *TextStatic) Nodes() NodeSpan {
	if t.node == NoNode {
		return EmptySpan()
	}
	return NodeSpanOf(t.node)
}

func (t *TextStatic) Build(owner NodeID, w *World) {
	if t.node != NoNode {
		w.Fatalf(ErrAlreadyBuilt, "text %q", t.text)
	}

	t.node = w.CreateNode(owner)
	InsertComponent(w, t.node, TextContent{Value: t.text})
}

// React is never called: static text records no scope.
func (t *TextStatic) React(NodeID, *World, *TrackingScope) {}

func (t *TextStatic) Raze(_ NodeID, w *World) {
	if t.node == NoNode {
		w.Fatalf(ErrNotBuilt, "razing text %q", t.text)
	}

	w.DestroyNode(t.node)
	t.node = NoNode
}

// TextComputed displays a string computed from reactive state.
type TextComputed struct {
	node NodeID

	text func(cx *Cx) string
}

// TextFunc creates a view whose text is recomputed when what text reads
// changes.
func TextFunc(text func(cx *Cx) string) *TextComputed {
	return &TextComputed{text: text}
}

func (t *TextComputed) Nodes() NodeSpan {
	if t.node == NoNode {
		return EmptySpan()
	}
	return NodeSpanOf(t.node)
}

func (t *TextComputed) Build(owner NodeID, w *World) {
	if t.node != NoNode {
		w.Fatalf(ErrAlreadyBuilt, "computed text on node %d", owner)
	}

	scope := w.BeginScope(owner)
	text := t.text(NewCx(w, owner, scope))

	t.node = w.CreateNode(owner)
	InsertComponent(w, t.node, TextContent{Value: text})
}

func (t *TextComputed) React(owner NodeID, w *World, scope *TrackingScope) {
	text := t.text(NewCx(w, owner, scope))
	InsertComponent(w, t.node, TextContent{Value: text})
}

func (t *TextComputed) Raze(owner NodeID, w *World) {
	if t.node == NoNode {
		w.Fatalf(ErrNotBuilt, "razing computed text on node %d", owner)
	}

	w.DestroyNode(t.node)
	t.node = NoNode
}
