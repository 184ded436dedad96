package filters

import (
	"github.com/chewxy/math32"
	"github.com/dh1tw/graphAudio/audio"
)

// CutoffFilter is implemented by filters which are parameterized by a
// cutoff frequency.
type CutoffFilter interface {
	audio.Filter
	CutoffHz() float32
}

// x = 2π·fc/fs
func normalizedCutoff(cutoffHz float32, sampleHz float64) float32 {
	return 2 * math32.Pi * cutoffHz / float32(sampleHz)
}

// IIRLowpass is a one pole low pass filter.
//
//	y[i] = y[i-1] + alpha * (x[i] - y[i-1])
type IIRLowpass struct {
	cutoffHz   float32
	sampleHz   float64
	alpha      float32
	lastOutput audio.Frame
}

// NewIIRLowpass returns a low pass filter for audio at sampleHz with the
// given cutoff frequency.
func NewIIRLowpass(cutoffHz float32, sampleHz float64) *IIRLowpass {
	x := normalizedCutoff(cutoffHz, sampleHz)
	return &IIRLowpass{
		cutoffHz: cutoffHz,
		sampleHz: sampleHz,
		alpha:    x / (x + 1),
	}
}

// Apply filters the frame.
func (f *IIRLowpass) Apply(in audio.Frame) audio.Frame {
	f.lastOutput = f.lastOutput.Add(in.Sub(f.lastOutput).Scale(f.alpha))
	return f.lastOutput
}

// CutoffHz returns the cutoff frequency of the filter.
func (f *IIRLowpass) CutoffHz() float32 { return f.cutoffHz }

// SampleHz returns the sample rate the filter has been designed for.
func (f *IIRLowpass) SampleHz() float64 { return f.sampleHz }

// WithCutoffHz returns a new filter with a different cutoff frequency which
// continues from the history of f.
func (f *IIRLowpass) WithCutoffHz(cutoffHz float32) *IIRLowpass {
	n := NewIIRLowpass(cutoffHz, f.sampleHz)
	n.lastOutput = f.lastOutput
	return n
}

// IIRHighpass is a one pole high pass filter.
//
//	y[i] = alpha * (y[i-1] + x[i] - x[i-1])
type IIRHighpass struct {
	cutoffHz   float32
	sampleHz   float64
	alpha      float32
	lastInput  audio.Frame
	lastOutput audio.Frame
}

// NewIIRHighpass returns a high pass filter for audio at sampleHz with the
// given cutoff frequency.
func NewIIRHighpass(cutoffHz float32, sampleHz float64) *IIRHighpass {
	x := normalizedCutoff(cutoffHz, sampleHz)
	return &IIRHighpass{
		cutoffHz: cutoffHz,
		sampleHz: sampleHz,
		alpha:    1 / (1 + x),
	}
}

// Apply filters the frame.
func (f *IIRHighpass) Apply(in audio.Frame) audio.Frame {
	f.lastOutput = f.lastOutput.Add(in).Sub(f.lastInput).Scale(f.alpha)
	f.lastInput = in
	return f.lastOutput
}

// CutoffHz returns the cutoff frequency of the filter.
func (f *IIRHighpass) CutoffHz() float32 { return f.cutoffHz }

// SampleHz returns the sample rate the filter has been designed for.
func (f *IIRHighpass) SampleHz() float64 { return f.sampleHz }

// WithCutoffHz returns a new filter with a different cutoff frequency which
// continues from the history of f.
func (f *IIRHighpass) WithCutoffHz(cutoffHz float32) *IIRHighpass {
	n := NewIIRHighpass(cutoffHz, f.sampleHz)
	n.lastInput = f.lastInput
	n.lastOutput = f.lastOutput
	return n
}
