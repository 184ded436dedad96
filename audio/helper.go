package audio

// Silence overwrites every frame in buf with the equilibrium frame.
func Silence(buf []Frame) {
	for i := range buf {
		buf[i] = Frame{}
	}
}

// Mix adds src frame by frame into dst. If src is shorter than dst, the
// remaining frames of dst are left untouched.
func Mix(dst, src []Frame) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] = dst[i].Add(src[i])
	}
}

// AdjustVolume scales every frame in buf by volume.
func AdjustVolume(volume float32, buf []Frame) {
	for i := range buf {
		buf[i] = buf[i].Scale(volume)
	}
}

// Interleave writes the frames of buf as interleaved samples into out and
// returns the amount of samples written. Use outChs to specify the channel
// count of the destination; 1 keeps only the left channel, any value above
// Channels pads the remaining channels with silence.
func Interleave(buf []Frame, out []float32, outChs int) int {
	n := 0
	for _, fr := range buf {
		if n+outChs > len(out) {
			break
		}
		for ch := 0; ch < outChs; ch++ {
			if ch < Channels {
				out[n] = fr[ch]
			} else {
				out[n] = 0
			}
			n++
		}
	}
	return n
}

// Deinterleave is the inverse of Interleave for stereo data. It reads pairs
// of samples from in and returns the amount of frames written into buf.
func Deinterleave(in []float32, buf []Frame) int {
	n := 0
	for i := 0; i+1 < len(in) && n < len(buf); i += Channels {
		buf[n] = Frame{in[i], in[i+1]}
		n++
	}
	return n
}
