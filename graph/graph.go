package graph

import (
	"fmt"

	"github.com/dh1tw/graphAudio/audio"
)

// NodeIndex addresses a node slot in the graph. Slots of removed nodes are
// reused by later calls to AddNode.
type NodeIndex int

// EdgeIndex addresses an edge in the graph.
type EdgeIndex int

// Edge is a directed connection; Src feeds into Dest.
type Edge struct {
	Src  NodeIndex `json:"src"`
	Dest NodeIndex `json:"dest"`
}

// nodeRef pins a slot to the generation it had when it was referenced.
type nodeRef struct {
	idx NodeIndex
	gen uint32
}

type slot struct {
	node DspNode
	gen  uint32
	free bool
}

type edge struct {
	src, dest nodeRef
}

// AudioGraph stores DspNodes connected by directed edges and renders the
// output of its master node. Edges are never removed. When a node is
// removed, the generation of its slot is bumped and all edges pointing to
// the old generation are treated as disconnected from then on, also after
// the slot has been reused.
//
// AudioGraph is not safe for concurrent use; see Shared.
type AudioGraph struct {
	slots  []slot
	free   []NodeIndex
	edges  []edge
	master *nodeRef

	// render state, rebuilt whenever the topology changes
	dirty   bool
	order   []NodeIndex
	inputs  map[NodeIndex][]NodeIndex
	buffers [][]audio.Frame
}

// NewAudioGraph returns an empty graph without master.
func NewAudioGraph() *AudioGraph {
	return &AudioGraph{
		dirty: true,
	}
}

func (g *AudioGraph) isLive(ref nodeRef) bool {
	if ref.idx < 0 || int(ref.idx) >= len(g.slots) {
		return false
	}
	s := g.slots[ref.idx]
	return !s.free && s.gen == ref.gen
}

func (g *AudioGraph) ref(idx NodeIndex) (nodeRef, error) {
	if idx < 0 || int(idx) >= len(g.slots) || g.slots[idx].free {
		return nodeRef{}, fmt.Errorf("%w: index %d", audio.ErrNodeNotFound, idx)
	}
	return nodeRef{idx: idx, gen: g.slots[idx].gen}, nil
}

func (g *AudioGraph) edgeIsLive(e edge) bool {
	return g.isLive(e.src) && g.isLive(e.dest)
}

// AddNode inserts n into the graph. A free slot is reused if there is one.
func (g *AudioGraph) AddNode(n DspNode) NodeIndex {
	if n == nil {
		n = Empty{}
	}
	g.dirty = true

	if l := len(g.free); l > 0 {
		idx := g.free[l-1]
		g.free = g.free[:l-1]
		g.slots[idx].node = n
		g.slots[idx].free = false
		return idx
	}

	g.slots = append(g.slots, slot{node: n})
	return NodeIndex(len(g.slots) - 1)
}

// AddEdge connects src to dest. It fails with audio.ErrCycle if dest
// already feeds into src (or src == dest), since the pull based render
// would never terminate on a cyclic graph. The graph is left unchanged on
// error.
func (g *AudioGraph) AddEdge(src, dest NodeIndex) (EdgeIndex, error) {
	srcRef, err := g.ref(src)
	if err != nil {
		return 0, err
	}
	destRef, err := g.ref(dest)
	if err != nil {
		return 0, err
	}

	if g.reachable(dest, src) {
		return 0, fmt.Errorf("%w: %d -> %d", audio.ErrCycle, src, dest)
	}

	g.edges = append(g.edges, edge{src: srcRef, dest: destRef})
	g.dirty = true
	return EdgeIndex(len(g.edges) - 1), nil
}

// AddInput adds n to the graph and connects it to dest in one step. The new
// node has no other edges, so no cycle can be created.
func (g *AudioGraph) AddInput(n DspNode, dest NodeIndex) (EdgeIndex, NodeIndex, error) {
	if _, err := g.ref(dest); err != nil {
		return 0, 0, err
	}
	idx := g.AddNode(n)
	e, err := g.AddEdge(idx, dest)
	if err != nil {
		// unreachable, but never leave a dangling node behind
		g.RemoveNode(idx)
		return 0, 0, err
	}
	return e, idx, nil
}

// RemoveNode replaces the node at idx with Empty, frees its slot and
// returns the removed node. Edges of the removed node stay in the graph but
// no longer connect anything.
func (g *AudioGraph) RemoveNode(idx NodeIndex) (DspNode, error) {
	if _, err := g.ref(idx); err != nil {
		return nil, err
	}
	s := &g.slots[idx]
	old := s.node
	s.node = Empty{}
	s.free = true
	s.gen++
	g.free = append(g.free, idx)
	g.dirty = true
	return old, nil
}

// ReplaceNode swaps the node at idx for n and returns the previous node.
// The edges of the slot are kept.
func (g *AudioGraph) ReplaceNode(idx NodeIndex, n DspNode) (DspNode, error) {
	if _, err := g.ref(idx); err != nil {
		return nil, err
	}
	if n == nil {
		n = Empty{}
	}
	old := g.slots[idx].node
	g.slots[idx].node = n
	return old, nil
}

// Node returns the node at idx.
func (g *AudioGraph) Node(idx NodeIndex) (DspNode, error) {
	if _, err := g.ref(idx); err != nil {
		return nil, err
	}
	return g.slots[idx].node, nil
}

// SetMaster designates the node whose output is rendered.
func (g *AudioGraph) SetMaster(idx NodeIndex) error {
	ref, err := g.ref(idx)
	if err != nil {
		return err
	}
	g.master = &ref
	g.dirty = true
	return nil
}

// ClearMaster unsets the master node. The graph renders silence until a
// new master is set.
func (g *AudioGraph) ClearMaster() {
	g.master = nil
	g.dirty = true
}

// Master returns the index of the master node. ok is false if no master is
// set or the master node has been removed.
func (g *AudioGraph) Master() (idx NodeIndex, ok bool) {
	if g.master == nil || !g.isLive(*g.master) {
		return 0, false
	}
	return g.master.idx, true
}

// NodeCount returns the amount of live nodes.
func (g *AudioGraph) NodeCount() int {
	return len(g.slots) - len(g.free)
}

// EdgeCount returns the amount of stored edges, including those which no
// longer connect live nodes.
func (g *AudioGraph) EdgeCount() int {
	return len(g.edges)
}

// Nodes calls fn for every live node in index order.
func (g *AudioGraph) Nodes(fn func(NodeIndex, DspNode)) {
	for i, s := range g.slots {
		if !s.free {
			fn(NodeIndex(i), s.node)
		}
	}
}

// Edges returns the edges between live nodes in insertion order.
func (g *AudioGraph) Edges() []Edge {
	res := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if g.edgeIsLive(e) {
			res = append(res, Edge{Src: e.src.idx, Dest: e.dest.idx})
		}
	}
	return res
}

// reachable reports if to can be reached from "from" by following live
// edges. A node always reaches itself.
func (g *AudioGraph) reachable(from, to NodeIndex) bool {
	if from == to {
		return true
	}

	adj := make(map[NodeIndex][]NodeIndex)
	for _, e := range g.edges {
		if g.edgeIsLive(e) {
			adj[e.src.idx] = append(adj[e.src.idx], e.dest.idx)
		}
	}

	visited := map[NodeIndex]bool{from: true}
	queue := []NodeIndex{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
