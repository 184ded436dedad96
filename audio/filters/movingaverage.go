package filters

import (
	ringBuffer "github.com/dh1tw/golang-ring"
	"github.com/dh1tw/graphAudio/audio"
)

// MovingAverage is a FIR filter which outputs the mean of the last
// WindowSize frames. The window starts out filled with silence.
//
// The ring cycles pointers into frames, so Apply does not allocate.
type MovingAverage struct {
	size   int
	frames []audio.Frame
	window ringBuffer.Ring
	sum    [audio.Channels]float64
}

// NewMovingAverage returns a moving average filter over size frames. A size
// smaller than one is treated as one.
func NewMovingAverage(size int) *MovingAverage {
	if size < 1 {
		size = 1
	}
	m := &MovingAverage{
		size:   size,
		frames: make([]audio.Frame, size),
		window: ringBuffer.Ring{},
	}
	m.window.SetCapacity(size)
	for i := range m.frames {
		m.window.Enqueue(&m.frames[i])
	}
	return m
}

// WindowSize returns the amount of frames which are averaged.
func (m *MovingAverage) WindowSize() int {
	return m.size
}

// Apply evicts the oldest frame from the window, pushes in and returns the
// mean of the window.
func (m *MovingAverage) Apply(in audio.Frame) audio.Frame {
	// the ring always holds size frames
	p := m.window.Dequeue().(*audio.Frame)
	for ch := range p {
		m.sum[ch] -= float64(p[ch])
	}
	*p = in
	m.window.Enqueue(p)

	var out audio.Frame
	for ch := range in {
		m.sum[ch] += float64(in[ch])
		out[ch] = float32(m.sum[ch] / float64(m.size))
	}
	return out
}
