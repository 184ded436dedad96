package graph

import "github.com/dh1tw/graphAudio/audio"

// AudioRequested renders len(out) frames of the master node into out. Every
// node feeding into the master is processed exactly once per call: its
// buffer is cleared, the buffers of its distinct inputs are mixed into it
// and finally the node itself is applied. Without master, out is filled
// with silence.
func (g *AudioGraph) AudioRequested(out []audio.Frame, sampleHz float64) {
	master, ok := g.Master()
	if !ok {
		audio.Silence(out)
		return
	}

	if g.dirty {
		g.compile(master)
	}

	for _, idx := range g.order {
		buf := g.buffer(idx, len(out))
		audio.Silence(buf)
		for _, in := range g.inputs[idx] {
			audio.Mix(buf, g.buffers[in])
		}
		process(g.slots[idx].node, buf, sampleHz)
	}

	copy(out, g.buffers[master])
}

// buffer returns the scratch buffer of slot idx with n frames. Buffers are
// kept between render passes and only reallocated when they are too small.
func (g *AudioGraph) buffer(idx NodeIndex, n int) []audio.Frame {
	for len(g.buffers) <= int(idx) {
		g.buffers = append(g.buffers, nil)
	}
	if cap(g.buffers[idx]) < n {
		g.buffers[idx] = make([]audio.Frame, n)
	}
	g.buffers[idx] = g.buffers[idx][:n]
	return g.buffers[idx]
}

// compile computes the processing order of all nodes the master depends on,
// with every node placed after all of its inputs.
func (g *AudioGraph) compile(master NodeIndex) {
	g.inputs = make(map[NodeIndex][]NodeIndex)
	for _, e := range g.edges {
		if !g.edgeIsLive(e) {
			continue
		}
		dup := false
		for _, in := range g.inputs[e.dest.idx] {
			if in == e.src.idx {
				dup = true
				break
			}
		}
		if !dup {
			g.inputs[e.dest.idx] = append(g.inputs[e.dest.idx], e.src.idx)
		}
	}

	g.order = g.order[:0]
	visited := make(map[NodeIndex]bool)

	// depth first post order; the graph is acyclic
	var visit func(NodeIndex)
	visit = func(idx NodeIndex) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		for _, in := range g.inputs[idx] {
			visit(in)
		}
		g.order = append(g.order, idx)
	}
	visit(master)

	g.dirty = false
}

// RenderOrder returns the nodes processed by the next render pass in the
// order in which they are processed.
func (g *AudioGraph) RenderOrder() []NodeIndex {
	master, ok := g.Master()
	if !ok {
		return nil
	}
	if g.dirty {
		g.compile(master)
	}
	return append([]NodeIndex{}, g.order...)
}
