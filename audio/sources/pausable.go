package sources

import "github.com/dh1tw/graphAudio/audio"

// Pausable gates a source. While paused it produces equilibrium frames
// without pulling from the wrapped source, so playback resumes exactly
// where it stopped.
type Pausable[S audio.Source] struct {
	Wrapped S
	Paused  bool
}

// NewPausable wraps w with the given pause state.
func NewPausable[S audio.Source](w S, paused bool) *Pausable[S] {
	return &Pausable[S]{Wrapped: w, Paused: paused}
}

// Paused wraps w in a paused Pausable.
func Paused[S audio.Source](w S) *Pausable[S] {
	return NewPausable(w, true)
}

// Playing wraps w in a playing Pausable.
func Playing[S audio.Source](w S) *Pausable[S] {
	return NewPausable(w, false)
}

// PausableWith returns a Pausable around inner which carries over the pause
// state of p. It is used to swap the underlying source of a node without
// touching its transport state.
func PausableWith[S, T audio.Source](p *Pausable[S], inner T) *Pausable[T] {
	return NewPausable(inner, p.Paused)
}

// SampleHz returns the sample rate of the wrapped source.
func (p *Pausable[S]) SampleHz() float64 {
	return p.Wrapped.SampleHz()
}

// Next returns the next frame of the wrapped source or the equilibrium
// frame when paused.
func (p *Pausable[S]) Next() audio.Frame {
	if p.Paused {
		return audio.Equilibrium()
	}
	return p.Wrapped.Next()
}

// IsExhausted reports the exhaustion state of the wrapped source.
func (p *Pausable[S]) IsExhausted() bool {
	return p.Wrapped.IsExhausted()
}

// Close releases the resources of the wrapped source, if any.
func (p *Pausable[S]) Close() error {
	return audio.Close(p.Wrapped)
}
