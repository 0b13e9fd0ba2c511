package internal

import (
	"fmt"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReaction struct {
	mock.Mock
}

func (m *mockReaction) React(owner NodeID, w *World, scope *TrackingScope) {
	m.Called(owner, w, scope)
}

func (m *mockReaction) Cleanup(owner NodeID, w *World) {
	m.Called(owner, w)
}

func TestScheduler(t *testing.T) {
	t.Run("runs once on spawn", func(t *testing.T) {
		w := NewWorld(NewGraph())
		r := &mockReaction{}
		r.On("React", mock.Anything, w, mock.AnythingOfType("*internal.TrackingScope")).Once()
		r.On("Cleanup", mock.Anything, w).Once()

		id := w.SpawnReaction(r, NoNode)
		assert.Equal(t, Active, w.State(id))

		// nothing tracked, nothing to rerun
		w.Update()
		w.Update()

		w.DestroyNode(id)
		assert.Equal(t, Razed, w.State(id))

		r.AssertExpectations(t)
	})

	t.Run("reruns once per changed tick", func(t *testing.T) {
		w := NewWorld(NewGraph())
		a := w.CreateCell(nil, 0, intKey, nil)
		b := w.CreateCell(nil, 0, intKey, nil)

		runs := 0
		w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			runs++
			w.ReadCell(a, intKey, s)
			w.ReadCell(b, intKey, s)
		}}, NoNode)
		assert.Equal(t, 1, runs)

		w.Update()
		assert.Equal(t, 1, runs)

		w.StageCell(a, intKey, 1)
		w.Update()
		assert.Equal(t, 2, runs)

		w.StageCell(a, intKey, 2)
		w.StageCell(b, intKey, 2)
		w.Update()
		assert.Equal(t, 3, runs)

		w.Update()
		assert.Equal(t, 3, runs)
	})

	t.Run("redundant writes do not rerun", func(t *testing.T) {
		w := NewWorld(NewGraph())
		a := w.CreateCell(nil, 7, intKey, nil)

		runs := 0
		w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			runs++
			w.ReadCell(a, intKey, s)
		}}, NoNode)

		w.StageCell(a, intKey, 7)
		w.Update()

		assert.Equal(t, 1, runs)
	})

	t.Run("reactions see one snapshot per tick", func(t *testing.T) {
		w := NewWorld(NewGraph())
		trigger := w.CreateCell(nil, 0, intKey, nil)
		derived := w.CreateCell(nil, 0, intKey, nil)
		log := []string{}

		w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			v := w.ReadCell(trigger, intKey, s).(int)
			w.StageCell(derived, intKey, v*10)
		}}, NoNode)
		w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			tr := w.ReadCell(trigger, intKey, s)
			d := w.ReadCell(derived, intKey, s)
			log = append(log, fmt.Sprintf("trigger %v derived %v", tr, d))
		}}, NoNode)

		w.StageCell(trigger, intKey, 1)
		w.Update()
		w.Update()
		w.Update()

		assert.Equal(t, []string{
			"trigger 0 derived 0",
			"trigger 1 derived 0",
			"trigger 1 derived 10",
		}, log)
	})

	t.Run("scope holds only the last run's reads", func(t *testing.T) {
		w := NewWorld(NewGraph())
		toggle := w.CreateCell(nil, false, KeyOf[bool](), nil)
		a := w.CreateCell(nil, 0, intKey, nil)
		b := w.CreateCell(nil, 0, intKey, nil)

		id := w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			if w.ReadCell(toggle, KeyOf[bool](), s).(bool) {
				w.ReadCell(b, intKey, s)
			} else {
				w.ReadCell(a, intKey, s)
			}
		}}, NoNode)

		scope, ok := w.Scope(id)
		require.True(t, ok)
		assert.Equal(t, []NodeID{toggle, a}, slices.Collect(scope.Mutables()))

		w.StageCell(toggle, KeyOf[bool](), true)
		w.Update()

		scope, _ = w.Scope(id)
		assert.Equal(t, []NodeID{toggle, b}, slices.Collect(scope.Mutables()))
	})

	t.Run("stale dependencies do not trigger", func(t *testing.T) {
		w := NewWorld(NewGraph())
		toggle := w.CreateCell(nil, false, KeyOf[bool](), nil)
		a := w.CreateCell(nil, 0, intKey, nil)

		runs := 0
		w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			runs++
			if !w.ReadCell(toggle, KeyOf[bool](), s).(bool) {
				w.ReadCell(a, intKey, s)
			}
		}}, NoNode)

		w.StageCell(toggle, KeyOf[bool](), true)
		w.Update()
		assert.Equal(t, 2, runs)

		w.StageCell(a, intKey, 1)
		w.Update()
		assert.Equal(t, 2, runs)
	})

	t.Run("resources and components", func(t *testing.T) {
		type theme struct{ Dark bool }
		type hovered struct{}

		w := NewWorld(NewGraph())
		target := w.CreateNode(NoNode)
		w.Host().InsertResource(KeyOf[theme](), theme{})

		runs := 0
		w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			runs++
			s.AddResource(KeyOf[theme]())
			s.AddComponent(target, KeyOf[hovered]())
		}}, NoNode)

		w.Update()
		assert.Equal(t, 1, runs)

		w.Host().InsertResource(KeyOf[theme](), theme{Dark: true})
		w.Update()
		assert.Equal(t, 2, runs)

		w.Host().InsertComponent(target, KeyOf[hovered](), hovered{})
		w.Update()
		assert.Equal(t, 3, runs)

		w.Host().RemoveComponent(target, KeyOf[hovered]())
		w.Update()
		assert.Equal(t, 4, runs)

		w.Update()
		assert.Equal(t, 4, runs)
	})

	t.Run("reactions spawned during a pass are not rerun by it", func(t *testing.T) {
		w := NewWorld(NewGraph())
		trigger := w.CreateCell(nil, 0, intKey, nil)
		log := []string{}

		w.SpawnReaction(&funcReaction{react: func(owner NodeID, w *World, s *TrackingScope) {
			v := w.ReadCell(trigger, intKey, s)
			log = append(log, fmt.Sprintf("parent %v", v))
			if v == 1 {
				w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
					log = append(log, fmt.Sprintf("child %v", w.ReadCell(trigger, intKey, s)))
				}}, owner)
			}
		}}, NoNode)

		w.StageCell(trigger, intKey, 1)
		w.Update()
		w.Update()

		assert.Equal(t, []string{"parent 0", "parent 1", "child 1"}, log)
	})
}

func TestReactionLifecycle(t *testing.T) {
	t.Run("owned nodes survive reruns and go with the reaction", func(t *testing.T) {
		w := NewWorld(NewGraph())
		trigger := w.CreateCell(nil, 0, intKey, nil)
		var cells []NodeID

		id := w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			w.ReadCell(trigger, intKey, s)
			cells = append(cells, w.CreateCell(s, 0, intKey, nil))
		}}, NoNode)

		w.StageCell(trigger, intKey, 1)
		w.Update()

		scope, _ := w.Scope(id)
		assert.Equal(t, cells, scope.Owned())

		w.DestroyNode(id)
		for _, c := range cells {
			assert.False(t, w.HasCell(c))
		}
		assert.True(t, w.HasCell(trigger))
	})

	t.Run("destroying the owner cleans up nested reactions", func(t *testing.T) {
		w := NewWorld(NewGraph())
		log := []string{}

		owner := w.CreateNode(NoNode)
		for _, name := range []string{"first", "second"} {
			w.SpawnReaction(&funcReaction{cleanup: func(NodeID, *World) {
				log = append(log, "cleanup "+name)
			}}, owner)
		}
		assert.Equal(t, 2, w.Reactions())

		w.DestroyNode(owner)

		assert.Equal(t, []string{"cleanup second", "cleanup first"}, log)
		assert.Equal(t, 0, w.Reactions())
	})

	t.Run("partial construction is released", func(t *testing.T) {
		g := NewGraph()
		w := NewWorld(g)
		cleanups := 0

		assert.PanicsWithValue(t, "boom", func() {
			w.SpawnReaction(&funcReaction{
				react: func(owner NodeID, w *World, s *TrackingScope) {
					w.CreateCell(s, 0, intKey, nil)
					w.CreateNode(owner)
					panic("boom")
				},
				cleanup: func(NodeID, *World) { cleanups++ },
			}, NoNode)
		})

		assert.Equal(t, 0, g.Len())
		assert.Equal(t, 0, w.Reactions())
		assert.Equal(t, 0, cleanups)
	})

	t.Run("reentrant invocation is fatal", func(t *testing.T) {
		w := NewWorld(NewGraph())
		reenter := false

		id := w.SpawnReaction(&funcReaction{react: func(owner NodeID, w *World, _ *TrackingScope) {
			if reenter {
				w.invoke(w.slots[owner])
			}
		}}, NoNode)

		reenter = true
		requireFatal(t, ErrReentrant, func() {
			w.invoke(w.slots[id])
		})
	})
}

func TestMailbox(t *testing.T) {
	t.Run("rerun request", func(t *testing.T) {
		w := NewWorld(NewGraph())
		a := w.CreateCell(nil, 0, intKey, nil)

		runs := 0
		id := w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
			runs++
			w.ReadCell(a, intKey, s)
		}}, NoNode)

		w.Post(id, Request{Intent: IntentRerun})
		w.Post(id, Request{Intent: IntentRerun})
		w.StageCell(a, intKey, 1)
		w.Update()
		assert.Equal(t, 2, runs)

		w.Update()
		assert.Equal(t, 2, runs)
	})

	t.Run("raze request", func(t *testing.T) {
		w := NewWorld(NewGraph())
		log := []string{}

		id := w.SpawnReaction(&funcReaction{
			react:   func(NodeID, *World, *TrackingScope) { log = append(log, "react") },
			cleanup: func(NodeID, *World) { log = append(log, "cleanup") },
		}, NoNode)

		w.Post(id, Request{Intent: IntentRaze})
		assert.Equal(t, Active, w.State(id))

		w.Update()
		assert.Equal(t, Razed, w.State(id))
		assert.False(t, w.Host().Contains(id))

		// dropped
		w.Post(id, Request{Intent: IntentRerun})
		w.Update()

		assert.Equal(t, []string{"react", "cleanup"}, log)
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")
	w := NewWorld(NewGraph(), WithMetrics(m))

	a := w.CreateCell(nil, 0, intKey, nil)
	id := w.SpawnReaction(&funcReaction{react: func(_ NodeID, w *World, s *TrackingScope) {
		w.ReadCell(a, intKey, s)
	}}, NoNode)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.liveReactions))

	w.StageCell(a, intKey, 1)
	w.Update()
	w.Update()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.commits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cellsChanged))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reactionsRun))

	w.DestroyNode(id)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.liveReactions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.nodesDestroyed))
}

func TestAffinity(t *testing.T) {
	w := NewWorld(NewGraph(), WithAffinity(true))
	a := w.CreateCell(nil, 0, intKey, nil)

	w.StageCell(a, intKey, 1)
	w.Update()

	done := make(chan any)
	go func() {
		defer func() { done <- recover() }()
		w.Update()
	}()

	r := <-done
	err, ok := r.(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrWrongGoroutine)
}
