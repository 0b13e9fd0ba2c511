package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFatal(t *testing.T, target error, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation")

		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.ErrorIs(t, err, target)
	}()

	fn()
}

type reactionFunc func(cx *Cx)

func (f reactionFunc) React(owner NodeID, w *World, scope *TrackingScope) {
	f(NewCx(w, owner, scope))
}

func (f reactionFunc) Cleanup(NodeID, *World) {}

// probe renders one node and logs its lifecycle under label.
type probe struct {
	label string
	log   *[]string
	node  NodeID
}

func (p *probe) Nodes() NodeSpan {
	return NodeSpanOf(p.node)
}

func (p *probe) Build(owner NodeID, w *World) {
	*p.log = append(*p.log, "build "+p.label)
	p.node = w.CreateNode(owner)
}

func (p *probe) React(NodeID, *World, *TrackingScope) {}

func (p *probe) Raze(_ NodeID, w *World) {
	*p.log = append(*p.log, "raze "+p.label)
	w.DestroyNode(p.node)
}
