package internal

import "iter"

type spanKind int

const (
	spanEmpty spanKind = iota
	spanNode
	spanFragment
)

// NodeSpan is the set of host nodes a view currently renders.
type NodeSpan struct {
	kind     spanKind
	node     NodeID
	children []NodeSpan
}

func EmptySpan() NodeSpan {
	return NodeSpan{}
}

func NodeSpanOf(id NodeID) NodeSpan {
	return NodeSpan{kind: spanNode, node: id}
}

func FragmentSpan(children ...NodeSpan) NodeSpan {
	return NodeSpan{kind: spanFragment, children: children}
}

func (s NodeSpan) IsEmpty() bool {
	return s.Count() == 0
}

// Count returns the number of nodes in the span.
func (s NodeSpan) Count() int {
	switch s.kind {
	case spanNode:
		return 1
	case spanFragment:
		n := 0
		for _, c := range s.children {
			n += c.Count()
		}
		return n
	default:
		return 0
	}
}

// All iterates over the span's nodes in order.
func (s NodeSpan) All() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		s.walk(yield)
	}
}

func (s NodeSpan) walk(yield func(NodeID) bool) bool {
	switch s.kind {
	case spanNode:
		return yield(s.node)
	case spanFragment:
		for _, c := range s.children {
			if !c.walk(yield) {
				return false
			}
		}
	}
	return true
}

// Flatten returns the span's nodes in order.
func (s NodeSpan) Flatten() []NodeID {
	ids := make([]NodeID, 0, s.Count())
	for id := range s.All() {
		ids = append(ids, id)
	}
	return ids
}
