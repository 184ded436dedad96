package scWriter

import (
	"time"

	"github.com/dh1tw/graphAudio/engine"
	"github.com/sirupsen/logrus"
)

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing a sound card writer.
type Options struct {
	HostAPI         string
	DeviceName      string
	Channels        int
	Samplerate      float64
	FramesPerBuffer int
	Latency         time.Duration
	SampleFormat    engine.SampleFormat
	Logger          *logrus.Logger
	OnCustom        func(string)
}

// HostAPI is a functional option to enforce the usage of a particular
// audio host API
func HostAPI(hostAPI string) Option {
	return func(args *Options) {
		args.HostAPI = hostAPI
	}
}

// DeviceName is a functional option to specify the name of the
// Audio device
func DeviceName(name string) Option {
	return func(args *Options) {
		args.DeviceName = name
	}
}

// Channels is a functional option to set the amount of channels to be used
// with the audio device. The graph renders stereo, so the device must
// provide at least two output channels.
func Channels(chs int) Option {
	return func(args *Options) {
		args.Channels = chs
	}
}

// Samplerate is a functional option to set the sampling rate of the
// audio device. Make sure your audio device supports the specified sampling
// rate. A value of 0 selects the default sample rate of the device.
func Samplerate(s float64) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}

// FramesPerBuffer is a functional option which sets the amount of sample frames
// our audio device will request when executing the callback.
// Example: A buffer with 960 frames at 48000kHz / stereo contains
// 1920 samples and results in 20ms Audio.
func FramesPerBuffer(s int) Option {
	return func(args *Options) {
		args.FramesPerBuffer = s
	}
}

// Latency is a functional option to set the latency of the audio device.
// A value of 0 selects the default low latency of the device.
func Latency(t time.Duration) Option {
	return func(args *Options) {
		args.Latency = t
	}
}

// SampleFormat is a functional option to set the sample representation
// handed to the audio device. Supported are engine.F32 and engine.I16.
func SampleFormat(f engine.SampleFormat) Option {
	return func(args *Options) {
		args.SampleFormat = f
	}
}

// Logger is a functional option to set the logger of the speaker engine.
func Logger(l *logrus.Logger) Option {
	return func(args *Options) {
		args.Logger = l
	}
}

// OnCustom is a functional option to register a handler for custom control
// messages. The handler runs on the audio thread and must not block.
func OnCustom(fn func(string)) Option {
	return func(args *Options) {
		args.OnCustom = fn
	}
}
