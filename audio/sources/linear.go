package sources

import "github.com/dh1tw/graphAudio/audio"

// linearResampler interpolates linearly between the two input frames that
// surround the current output position. pos is the fractional distance from
// left to right and carries over between calls, so the phase stays
// continuous.
type linearResampler struct {
	src         audio.Source
	step        float64 // input frames per output frame
	pos         float64
	left, right audio.Frame
	primed      bool
}

func newLinearResampler(src audio.Source, targetHz float64) *linearResampler {
	return &linearResampler{
		src:  src,
		step: src.SampleHz() / targetHz,
	}
}

func (l *linearResampler) next() audio.Frame {
	if !l.primed {
		l.left = l.src.Next()
		l.right = l.src.Next()
		l.primed = true
	}

	for l.pos >= 1 {
		l.pos--
		l.left = l.right
		l.right = l.src.Next()
	}

	out := l.left.Add(l.right.Sub(l.left).Scale(float32(l.pos)))
	l.pos += l.step
	return out
}

func (l *linearResampler) isExhausted() bool {
	return l.src.IsExhausted()
}

func (l *linearResampler) close() error { return nil }
