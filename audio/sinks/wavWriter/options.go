package wavWriter

import (
	"github.com/sirupsen/logrus"
)

// Option is the type for a function option
type Option func(*Options)

const (
	DefaultSamplerate      float64 = 48000
	DefaultBitDepth        int     = 16
	DefaultFramesPerBuffer int     = 1024
)

// Options contains the parameters for initializing a wav writer.
type Options struct {
	Samplerate      float64
	BitDepth        int
	FramesPerBuffer int
	Realtime        bool
	MaxFrames       int
	Logger          *logrus.Logger
	OnCustom        func(string)
}

// Samplerate is a functional option to set the sampling rate with which the
// audio will be recorded. The higher the samplerate, the larger the
// recordings are.
func Samplerate(s float64) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}

// BitDepth is a functional option to set the bit depth with which the audio
// will be written to file. The Bitdepth (16/24 bit) defines the dynamic range
// of the audio. For most usecases 16 bit (default) is the way to go.
func BitDepth(b int) Option {
	return func(args *Options) {
		args.BitDepth = b
	}
}

// FramesPerBuffer sets the amount of frames rendered per cycle.
func FramesPerBuffer(n int) Option {
	return func(args *Options) {
		args.FramesPerBuffer = n
	}
}

// Realtime paces the rendering with the wall clock, as a sound card would.
// Without it the graph is rendered as fast as possible.
func Realtime(r bool) Option {
	return func(args *Options) {
		args.Realtime = r
	}
}

// MaxFrames stops the rendering after n frames have been written. 0 means
// unlimited.
func MaxFrames(n int) Option {
	return func(args *Options) {
		args.MaxFrames = n
	}
}

// Logger is a functional option to set the logger of the wav engine.
func Logger(l *logrus.Logger) Option {
	return func(args *Options) {
		args.Logger = l
	}
}

// OnCustom is a functional option to register a handler for custom control
// messages.
func OnCustom(fn func(string)) Option {
	return func(args *Options) {
		args.OnCustom = fn
	}
}
