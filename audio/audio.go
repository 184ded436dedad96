package audio

import "io"

// Source is the interface which is implemented by everything that produces
// audio frames on demand. This could be a decoded file, the stdout of a
// subprocess or a synthetic signal. Sources are pulled one frame at a time
// by the render thread.
//
// A source that has run dry reports IsExhausted() == true and keeps
// returning the equilibrium frame from Next(). Callers are allowed to pull
// indefinitely.
type Source interface {
	// SampleHz returns the native sample rate of the source in Hertz.
	SampleHz() float64
	// Next returns the next frame of the source.
	Next() Frame
	// IsExhausted reports if the source has no more frames to deliver.
	IsExhausted() bool
}

// Filter is the interface which is implemented by frame-by-frame signal
// processors. Apply is called once per frame, in order, for the lifetime of
// the filter and may update the internal state of the filter.
type Filter interface {
	Apply(Frame) Frame
}

// SourceFunc adapts an ordinary function into a never exhausting Source
// with the given sample rate.
type SourceFunc struct {
	Hz float64
	Fn func() Frame
}

// SampleHz returns the configured sample rate.
func (s SourceFunc) SampleHz() float64 { return s.Hz }

// Next calls the wrapped function.
func (s SourceFunc) Next() Frame { return s.Fn() }

// IsExhausted always returns false.
func (s SourceFunc) IsExhausted() bool { return false }

// FilterFunc adapts an ordinary function into a Filter.
type FilterFunc func(Frame) Frame

// Apply calls f(fr).
func (f FilterFunc) Apply(fr Frame) Frame { return f(fr) }

// Close releases the resources held by v if it implements io.Closer.
// Values which don't hold any resources are ignored.
func Close(v interface{}) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
