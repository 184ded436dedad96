package audio

// Channels is the fixed amount of channels carried by a Frame.
const Channels = 2

// MaxSampleHz is the highest sample rate a source may declare. Converting
// a source pulls SampleHz/target input frames per output frame, so the
// rate bounds the work of a render pass.
const MaxSampleHz = 768000

// Frame contains one sample per channel. It is the atomic unit that flows
// through the processing graph.
type Frame [Channels]float32

// Equilibrium returns the frame representing digital silence.
func Equilibrium() Frame {
	return Frame{}
}

// Add returns the channel-wise sum of f and o.
func (f Frame) Add(o Frame) Frame {
	for i := range f {
		f[i] += o[i]
	}
	return f
}

// Sub returns the channel-wise difference of f and o.
func (f Frame) Sub(o Frame) Frame {
	for i := range f {
		f[i] -= o[i]
	}
	return f
}

// Scale returns f with every sample multiplied by factor.
func (f Frame) Scale(factor float32) Frame {
	for i := range f {
		f[i] *= factor
	}
	return f
}
