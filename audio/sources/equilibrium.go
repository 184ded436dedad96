package sources

import "github.com/dh1tw/graphAudio/audio"

// Equilibrium is a silent source which never runs dry.
type Equilibrium struct{}

// SampleHz returns 44.1kHz.
func (Equilibrium) SampleHz() float64 { return 44100 }

// Next returns the equilibrium frame.
func (Equilibrium) Next() audio.Frame { return audio.Equilibrium() }

// IsExhausted always returns false.
func (Equilibrium) IsExhausted() bool { return false }
