package internal

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

type funcReaction struct {
	react   func(owner NodeID, w *World, scope *TrackingScope)
	cleanup func(owner NodeID, w *World)
}

func (r *funcReaction) React(owner NodeID, w *World, scope *TrackingScope) {
	if r.react != nil {
		r.react(owner, w, scope)
	}
}

func (r *funcReaction) Cleanup(owner NodeID, w *World) {
	if r.cleanup != nil {
		r.cleanup(owner, w)
	}
}

// recordingView creates one display node and logs its lifecycle.
type recordingView struct {
	name string
	log  *[]string
	node NodeID

	build func(owner NodeID, w *World)
}

func (v *recordingView) Nodes() NodeSpan {
	return NodeSpanOf(v.node)
}

func (v *recordingView) Build(owner NodeID, w *World) {
	*v.log = append(*v.log, "build "+v.name)
	v.node = w.CreateNode(owner)
	if v.build != nil {
		v.build(owner, w)
	}
}

func (v *recordingView) React(NodeID, *World, *TrackingScope) {
	*v.log = append(*v.log, "react "+v.name)
}

func (v *recordingView) Raze(_ NodeID, w *World) {
	*v.log = append(*v.log, "raze "+v.name)
	w.DestroyNode(v.node)
}

var intKey = KeyOf[int]()
