package engine

import (
	"github.com/chewxy/math32"
	"github.com/dh1tw/graphAudio/audio"
)

// SampleFormat is the native sample representation of an output device.
type SampleFormat int

const (
	F32 SampleFormat = iota
	I16
	U16
)

func (f SampleFormat) String() string {
	switch f {
	case F32:
		return "f32"
	case I16:
		return "i16"
	case U16:
		return "u16"
	}
	return "unknown"
}

func clamp(s float32) float32 {
	return math32.Max(-1, math32.Min(1, s))
}

// ToI16 converts a float sample in [-1, 1] to a signed 16 bit sample.
func ToI16(s float32) int16 {
	return int16(math32.Round(clamp(s) * 32767))
}

// ToU16 converts a float sample in [-1, 1] to an unsigned 16 bit sample
// with the equilibrium at 32768.
func ToU16(s float32) uint16 {
	return uint16(math32.Round((clamp(s)*0.5 + 0.5) * 65535))
}

// WriteF32 interleaves buf into out with chs channels per frame.
func WriteF32(buf []audio.Frame, out []float32, chs int) {
	audio.Interleave(buf, out, chs)
}

// WriteI16 converts and interleaves buf into out with chs channels per frame.
func WriteI16(buf []audio.Frame, out []int16, chs int) {
	n := 0
	for _, fr := range buf {
		for ch := 0; ch < chs && n < len(out); ch++ {
			if ch < audio.Channels {
				out[n] = ToI16(fr[ch])
			} else {
				out[n] = 0
			}
			n++
		}
	}
}

// WriteU16 converts and interleaves buf into out with chs channels per frame.
func WriteU16(buf []audio.Frame, out []uint16, chs int) {
	n := 0
	for _, fr := range buf {
		for ch := 0; ch < chs && n < len(out); ch++ {
			if ch < audio.Channels {
				out[n] = ToU16(fr[ch])
			} else {
				out[n] = ToU16(0)
			}
			n++
		}
	}
}
