package graph

import (
	"sync"

	"github.com/dh1tw/graphAudio/audio"
)

// Shared guards an AudioGraph with a mutex, so that one render thread and
// any number of control threads can work on the same graph. The render
// thread takes the lock exactly once per buffer. Operations which consist
// of several steps must be run inside Do, since the lock is not reentrant.
type Shared struct {
	mu    sync.Mutex
	graph *AudioGraph
}

// NewShared returns a shared graph which contains a single Empty node set
// as master.
func NewShared() *Shared {
	g := NewAudioGraph()
	g.SetMaster(g.AddNode(Empty{}))
	return &Shared{graph: g}
}

// NewSharedGraph wraps an existing graph. The caller must not access g
// directly afterwards.
func NewSharedGraph(g *AudioGraph) *Shared {
	return &Shared{graph: g}
}

// Do runs fn while holding the lock. fn must not call other methods of s.
func (s *Shared) Do(fn func(g *AudioGraph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.graph)
}

// AudioRequested renders the master node into out.
func (s *Shared) AudioRequested(out []audio.Frame, sampleHz float64) {
	s.mu.Lock()
	s.graph.AudioRequested(out, sampleHz)
	s.mu.Unlock()
}

// AddNode adds n to the graph.
func (s *Shared) AddNode(n DspNode) NodeIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.AddNode(n)
}

// AddEdge connects src to dest.
func (s *Shared) AddEdge(src, dest NodeIndex) (EdgeIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.AddEdge(src, dest)
}

// AddInput adds n and connects it to dest.
func (s *Shared) AddInput(n DspNode, dest NodeIndex) (EdgeIndex, NodeIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.AddInput(n, dest)
}

// RemoveNode removes the node at idx and returns it.
func (s *Shared) RemoveNode(idx NodeIndex) (DspNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.RemoveNode(idx)
}

// ReplaceNode swaps the node at idx for n and returns the previous node.
func (s *Shared) ReplaceNode(idx NodeIndex, n DspNode) (DspNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.ReplaceNode(idx, n)
}

// Node returns the node at idx.
func (s *Shared) Node(idx NodeIndex) (DspNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Node(idx)
}

// SetMaster designates the node whose output is rendered.
func (s *Shared) SetMaster(idx NodeIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.SetMaster(idx)
}

// Master returns the index of the master node.
func (s *Shared) Master() (NodeIndex, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Master()
}

// ClearMaster unsets the master node. The graph renders silence until a
// new master is set.
func (s *Shared) ClearMaster() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.ClearMaster()
}
