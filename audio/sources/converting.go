package sources

import (
	"github.com/dh1tw/graphAudio/audio"
)

// resampler produces frames at the target rate by pulling lazily from a
// source running at a different rate.
type resampler interface {
	next() audio.Frame
	isExhausted() bool
	close() error
}

// Converting adapts the sample rate of a source to a target rate. When both
// rates are exactly equal the source is passed through untouched, otherwise
// frames are produced by a resampler.
type Converting[S audio.Source] struct {
	wrapped  S
	targetHz float64
	quality  Quality
	conv     resampler // nil on passthrough
}

// ToSampleHz returns a Converting source which delivers the frames of s at
// targetHz. The rates are compared with exact float equality. If the
// requested sinc converter can not be set up, linear interpolation is used
// instead.
func ToSampleHz[S audio.Source](targetHz float64, s S, opts ...Option) *Converting[S] {
	options := Options{
		Quality:   DefaultQuality,
		ChunkSize: DefaultChunkSize,
	}
	for _, o := range opts {
		o(&options)
	}

	c := &Converting[S]{
		wrapped:  s,
		targetHz: targetHz,
		quality:  options.Quality,
	}

	if s.SampleHz() == targetHz {
		return c
	}

	if options.Quality != Linear {
		conv, err := newSincResampler(s, targetHz, options.Quality, options.ChunkSize)
		if err == nil {
			c.conv = conv
			return c
		}
		c.quality = Linear
	}

	c.conv = newLinearResampler(s, targetHz)
	return c
}

// Wrapped returns the original source, regardless if it is resampled or not.
func (c *Converting[S]) Wrapped() S {
	return c.wrapped
}

// Passthrough reports if the frames of the wrapped source are forwarded
// without conversion.
func (c *Converting[S]) Passthrough() bool {
	return c.conv == nil
}

// Quality returns the algorithm in use. A passthrough reports the quality it
// was configured with.
func (c *Converting[S]) Quality() Quality {
	return c.quality
}

// SampleHz returns the target sample rate.
func (c *Converting[S]) SampleHz() float64 {
	return c.targetHz
}

// Next returns the next frame at the target rate.
func (c *Converting[S]) Next() audio.Frame {
	if c.conv == nil {
		return c.wrapped.Next()
	}
	return c.conv.next()
}

// IsExhausted reports if no more frames can be delivered.
func (c *Converting[S]) IsExhausted() bool {
	if c.conv == nil {
		return c.wrapped.IsExhausted()
	}
	return c.conv.isExhausted()
}

// Close releases the converter and the wrapped source.
func (c *Converting[S]) Close() error {
	if c.conv != nil {
		if err := c.conv.close(); err != nil {
			return err
		}
	}
	return audio.Close(c.wrapped)
}
