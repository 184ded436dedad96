package filters

import "github.com/dh1tw/graphAudio/audio"

// Disableable wraps a filter which can be bypassed. The wrapped filter is
// stepped on every frame even while disabled, so that its history stays
// current and re-enabling it does not produce a discontinuity.
type Disableable[F audio.Filter] struct {
	Wrapped  F
	Disabled bool
}

// NewDisableable wraps f with the given state.
func NewDisableable[F audio.Filter](f F, disabled bool) *Disableable[F] {
	return &Disableable[F]{Wrapped: f, Disabled: disabled}
}

// Apply runs the frame through the wrapped filter and returns its output,
// or the unmodified input if disabled.
func (d *Disableable[F]) Apply(in audio.Frame) audio.Frame {
	out := d.Wrapped.Apply(in)
	if d.Disabled {
		return in
	}
	return out
}
