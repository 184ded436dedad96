package control

import (
	"context"
	"fmt"
	"sync"

	"github.com/dh1tw/graphAudio/audio/sources"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/graph"
	glog "github.com/dh1tw/graphAudio/log"
	"github.com/sirupsen/logrus"
)

// GraphService exposes the operations which remote clients may perform on
// a shared graph and on the engine rendering it. It is safe for concurrent
// use.
type GraphService struct {
	sync.Mutex
	graph    *graph.Shared
	engine   engine.BackgroundEngine
	opts     []sources.Option
	log      *logrus.Entry
	onChange []func(GraphSnapshot)
}

// NewGraphService returns a service working on g. Sources created through
// the service are converted to the sample rate of bg using opts.
func NewGraphService(g *graph.Shared, bg engine.BackgroundEngine,
	log *logrus.Entry, opts ...sources.Option) *GraphService {
	if log == nil {
		log = glog.Component(glog.GetLogger(), "control")
	}
	return &GraphService{
		graph:  g,
		engine: bg,
		opts:   opts,
		log:    log,
	}
}

// OnChange registers fn to be called with the new state after every
// successful mutation of the graph.
func (s *GraphService) OnChange(fn func(GraphSnapshot)) {
	s.Lock()
	defer s.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *GraphService) notify() {
	s.Lock()
	hooks := make([]func(GraphSnapshot), len(s.onChange))
	copy(hooks, s.onChange)
	s.Unlock()

	if len(hooks) == 0 {
		return
	}
	snap := s.Get()
	for _, fn := range hooks {
		fn(snap)
	}
}

// SampleHz returns the sample rate of the engine.
func (s *GraphService) SampleHz() float64 {
	return s.engine.SampleHz
}

// Get returns the current state of the graph.
func (s *GraphService) Get() GraphSnapshot {
	snap := GraphSnapshot{
		Nodes: map[int]NodeSpec{},
		Edges: []EdgeSpec{},
	}
	s.graph.Do(func(g *graph.AudioGraph) error {
		g.Nodes(func(idx graph.NodeIndex, n graph.DspNode) {
			snap.Nodes[int(idx)] = FromDspNode(n)
		})
		for _, e := range g.Edges() {
			snap.Edges = append(snap.Edges, EdgeSpec{Src: int(e.Src), Dest: int(e.Dest)})
		}
		if m, ok := g.Master(); ok {
			master := int(m)
			snap.Master = &master
		}
		return nil
	})
	return snap
}

// AddNode creates the node described by spec and adds it to the graph.
func (s *GraphService) AddNode(spec NodeSpec) (int, error) {
	n, err := ToDspNode(spec, s.engine.SampleHz, s.opts...)
	if err != nil {
		return 0, err
	}
	idx := s.graph.AddNode(n)

	s.log.WithFields(logrus.Fields{
		"index": idx,
		"type":  spec.Type,
	}).Info("node added")
	s.notify()
	return int(idx), nil
}

// RemoveNode removes the node at index and releases its resources.
func (s *GraphService) RemoveNode(index int) error {
	old, err := s.graph.RemoveNode(graph.NodeIndex(index))
	if err != nil {
		return err
	}
	s.closeNode(index, old)

	s.log.WithField("index", index).Info("node removed")
	s.notify()
	return nil
}

// ReplaceNode replaces the node at index with the node described by spec.
// If spec describes the same source or filter with only its flags or
// cutoff frequency changed, the node is updated in place.
func (s *GraphService) ReplaceNode(index int, spec NodeSpec) error {
	idx := graph.NodeIndex(index)

	updated := false
	err := s.graph.Do(func(g *graph.AudioGraph) error {
		old, err := g.Node(idx)
		if err != nil {
			return err
		}
		updated = updateInPlace(old, spec)
		return nil
	})
	if err != nil {
		return err
	}

	if !updated {
		// opening files and spawning processes happens outside of the
		// lock, so that the render thread is not held up
		n, err := ToDspNode(spec, s.engine.SampleHz, s.opts...)
		if err != nil {
			return err
		}

		var old graph.DspNode
		err = s.graph.Do(func(g *graph.AudioGraph) error {
			prev, err := g.Node(idx)
			if err != nil {
				return err
			}
			old, err = g.ReplaceNode(idx, carryPauseState(prev, n, spec))
			return err
		})
		if err != nil {
			graph.CloseNode(n)
			return err
		}
		s.closeNode(index, old)
	}

	s.log.WithFields(logrus.Fields{
		"index":   index,
		"type":    spec.Type,
		"inPlace": updated,
	}).Info("node replaced")
	s.notify()
	return nil
}

// AddEdge connects src to dest.
func (s *GraphService) AddEdge(src, dest int) (int, error) {
	e, err := s.graph.AddEdge(graph.NodeIndex(src), graph.NodeIndex(dest))
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"src":  src,
		"dest": dest,
	}).Info("edge added")
	s.notify()
	return int(e), nil
}

// SetMaster makes the node at index the output of the graph.
func (s *GraphService) SetMaster(index int) error {
	if err := s.graph.SetMaster(graph.NodeIndex(index)); err != nil {
		return err
	}

	s.log.WithField("index", index).Info("master set")
	s.notify()
	return nil
}

// ClearMaster unsets the master node; the graph renders silence until a
// new master is set.
func (s *GraphService) ClearMaster() {
	s.graph.ClearMaster()
	s.log.Info("master cleared")
	s.notify()
}

// Play resumes the engine. It blocks until the engine has room for the
// message or ctx is done.
func (s *GraphService) Play(ctx context.Context) error {
	return s.send(ctx, engine.PlayMsg())
}

// Pause pauses the engine.
func (s *GraphService) Pause(ctx context.Context) error {
	return s.send(ctx, engine.PauseMsg())
}

func (s *GraphService) send(ctx context.Context, msg engine.ControlMsg) error {
	if err := s.engine.Controls.SendContext(ctx, msg); err != nil {
		return fmt.Errorf("unable to send %s to engine: %w", msg, err)
	}
	s.log.WithField("msg", msg.String()).Debug("engine control message sent")
	return nil
}

func (s *GraphService) closeNode(index int, n graph.DspNode) {
	if n == nil {
		return
	}
	if err := graph.CloseNode(n); err != nil {
		s.log.WithError(err).WithField("index", index).Warn("unable to close node")
	}
}
