package internal

import (
	"iter"
	"slices"
)

type slot struct {
	value   any
	changed Tick
}

type graphNode struct {
	parent   NodeID
	children []NodeID

	components map[TypeKey]*slot

	// tick of the last removal per component type, so that readers of a
	// removed component still see it as changed
	removed map[TypeKey]Tick
}

// Graph is an in-memory Host. Every node keeps an ordered list of its
// children, which is the ownership index used for teardown.
type Graph struct {
	next  NodeID
	tick  Tick
	nodes map[NodeID]*graphNode

	resources map[TypeKey]*slot

	hooks []func(NodeID)

	// nodes whose destruction is in progress
	dying map[NodeID]struct{}
}

var _ Host = (*Graph)(nil)

func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[NodeID]*graphNode),
		resources: make(map[TypeKey]*slot),
		dying:     make(map[NodeID]struct{}),
	}
}

func (g *Graph) node(id NodeID) *graphNode {
	n, ok := g.nodes[id]
	if !ok {
		fatalf(ErrUnknownNode, "node %d", id)
	}
	return n
}

func (g *Graph) CreateNode(parent NodeID) NodeID {
	if parent != NoNode {
		g.node(parent)
	}

	g.next++
	id := g.next

	g.nodes[id] = &graphNode{components: make(map[TypeKey]*slot)}
	if parent != NoNode {
		g.AttachChild(parent, id)
	}

	return id
}

// AttachChild makes child the last child of parent, detaching it from any
// previous parent.
func (g *Graph) AttachChild(parent, child NodeID) {
	p := g.node(parent)
	c := g.node(child)

	if c.parent == parent {
		return
	}
	if c.parent != NoNode {
		g.detach(child, c)
	}

	c.parent = parent
	p.children = append(p.children, child)
}

func (g *Graph) detach(id NodeID, n *graphNode) {
	if p, ok := g.nodes[n.parent]; ok {
		if i := slices.Index(p.children, id); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	n.parent = NoNode
}

func (g *Graph) Parent(id NodeID) (NodeID, bool) {
	n := g.node(id)
	return n.parent, n.parent != NoNode
}

func (g *Graph) Children(id NodeID) []NodeID {
	return slices.Clone(g.node(id).children)
}

func (g *Graph) Contains(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes iterates over live node ids in creation order.
func (g *Graph) Nodes() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		ids := make([]NodeID, 0, len(g.nodes))
		for id := range g.nodes {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

func (g *Graph) OnDestroy(hook func(NodeID)) {
	g.hooks = append(g.hooks, hook)
}

func (g *Graph) DestroySubtree(id NodeID) {
	root, ok := g.nodes[id]
	if !ok {
		return
	}
	if _, ok := g.dying[id]; ok {
		return
	}
	g.detach(id, root)

	for _, n := range g.collect(id) {
		if !g.Contains(n) {
			// a hook already took it down
			continue
		}

		g.dying[n] = struct{}{}
		for _, hook := range g.hooks {
			hook(n)
		}
		delete(g.dying, n)

		// hooks may have attached new children; they go with their parent
		if node, ok := g.nodes[n]; ok {
			for _, child := range slices.Clone(node.children) {
				g.DestroySubtree(child)
			}
		}
		delete(g.nodes, n)
	}
}

// collect returns the subtree rooted at id in post-order, later siblings
// before earlier ones.
func (g *Graph) collect(id NodeID) []NodeID {
	type frame struct {
		id      NodeID
		visited bool
	}

	var order []NodeID
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.visited {
			order = append(order, top.id)
			continue
		}

		stack = append(stack, frame{id: top.id, visited: true})
		for _, child := range g.nodes[top.id].children {
			stack = append(stack, frame{id: child})
		}
	}

	return order
}

func (g *Graph) Component(id NodeID, key TypeKey) (any, Tick, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, 0, false
	}

	s, ok := n.components[key]
	if !ok {
		return nil, 0, false
	}
	return s.value, s.changed, true
}

func (g *Graph) InsertComponent(id NodeID, key TypeKey, value any) {
	n := g.node(id)
	n.components[key] = &slot{value: value, changed: g.IncrementChangeTick()}
}

func (g *Graph) RemoveComponent(id NodeID, key TypeKey) bool {
	n := g.node(id)
	if _, ok := n.components[key]; !ok {
		return false
	}

	delete(n.components, key)
	if n.removed == nil {
		n.removed = make(map[TypeKey]Tick)
	}
	n.removed[key] = g.IncrementChangeTick()

	return true
}

func (g *Graph) ComponentRemovedAt(id NodeID, key TypeKey) (Tick, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, false
	}

	t, ok := n.removed[key]
	return t, ok
}

func (g *Graph) Resource(key TypeKey) (any, Tick, bool) {
	s, ok := g.resources[key]
	if !ok {
		return nil, 0, false
	}
	return s.value, s.changed, true
}

func (g *Graph) InsertResource(key TypeKey, value any) {
	g.resources[key] = &slot{value: value, changed: g.IncrementChangeTick()}
}

func (g *Graph) ChangeTick() Tick {
	return g.tick
}

func (g *Graph) IncrementChangeTick() Tick {
	g.tick++
	return g.tick
}
