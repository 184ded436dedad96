package engine

import (
	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/graph"
	"github.com/sirupsen/logrus"
)

// Renderer is the body of the render loop shared by all engines. It is
// called once per device buffer from the render thread, polls the control
// channel and renders the graph into the device buffer. The play/pause
// state is owned by the Renderer and can only be changed through the
// control channel.
//
// A Renderer must only be used by a single goroutine.
type Renderer struct {
	graph    *graph.Shared
	sampleHz float64
	controls EngineControls
	log      *logrus.Entry
	onCustom func(string)
	paused   bool
	scratch  []audio.Frame
}

// NewRenderer returns a Renderer rendering g at sampleHz. onCustom is
// called on the render thread for every Custom message and may be nil.
func NewRenderer(g *graph.Shared, sampleHz float64, controls EngineControls,
	log *logrus.Entry, onCustom func(string)) *Renderer {
	return &Renderer{
		graph:    g,
		sampleHz: sampleHz,
		controls: controls,
		log:      log,
		onCustom: onCustom,
	}
}

// Background returns the handle describing this renderer.
func (r *Renderer) Background() BackgroundEngine {
	return BackgroundEngine{
		SampleHz: r.sampleHz,
		Controls: r.controls,
	}
}

// render applies at most one pending control message and renders frames
// frames of the graph. It returns nil while the engine is paused.
func (r *Renderer) render(frames int) []audio.Frame {
	if msg, ok := r.controls.poll(); ok {
		switch msg.Kind {
		case Play:
			r.paused = false
		case Pause:
			r.paused = true
		case Custom:
			if r.onCustom != nil {
				r.onCustom(msg.Text)
			}
		}
		if r.log != nil {
			r.log.WithField("msg", msg.String()).Debug("control message received")
		}
	}

	if r.paused {
		return nil
	}

	if cap(r.scratch) < frames {
		r.scratch = make([]audio.Frame, frames)
	}
	r.scratch = r.scratch[:frames]
	r.graph.AudioRequested(r.scratch, r.sampleHz)
	return r.scratch
}

// RenderF32 fills out, interleaved with chs channels, with the next frames
// of the graph or with silence while paused.
func (r *Renderer) RenderF32(out []float32, chs int) {
	buf := r.render(len(out) / chs)
	if buf == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	WriteF32(buf, out, chs)
}

// RenderI16 is like RenderF32 for signed 16 bit devices.
func (r *Renderer) RenderI16(out []int16, chs int) {
	buf := r.render(len(out) / chs)
	if buf == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	WriteI16(buf, out, chs)
}

// RenderU16 is like RenderF32 for unsigned 16 bit devices.
func (r *Renderer) RenderU16(out []uint16, chs int) {
	buf := r.render(len(out) / chs)
	if buf == nil {
		silence := ToU16(0)
		for i := range out {
			out[i] = silence
		}
		return
	}
	WriteU16(buf, out, chs)
}

// RenderFrames renders into buf directly. It returns false and silences
// buf while the engine is paused.
func (r *Renderer) RenderFrames(buf []audio.Frame) bool {
	res := r.render(len(buf))
	if res == nil {
		audio.Silence(buf)
		return false
	}
	copy(buf, res)
	return true
}
