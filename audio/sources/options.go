package sources

import (
	"fmt"
	"strings"
)

// Quality selects the algorithm used by Converting when the rates of the
// source and the target differ.
type Quality int

const (
	// Linear interpolates between two neighbouring frames. It is cheap and
	// has no latency.
	Linear Quality = iota
	// SincFastest uses the fastest band limited converter of libsamplerate.
	SincFastest
	// SincMedium uses the medium quality converter of libsamplerate.
	SincMedium
	// SincBest uses the best quality converter of libsamplerate.
	SincBest
)

func (q Quality) String() string {
	switch q {
	case Linear:
		return "linear"
	case SincFastest:
		return "sinc-fastest"
	case SincMedium:
		return "sinc-medium"
	case SincBest:
		return "sinc-best"
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// ParseQuality returns the Quality for a name like "linear" or "sinc-best".
func ParseQuality(name string) (Quality, error) {
	switch strings.ToLower(name) {
	case "linear", "":
		return Linear, nil
	case "sinc-fastest":
		return SincFastest, nil
	case "sinc-medium":
		return SincMedium, nil
	case "sinc-best":
		return SincBest, nil
	}
	return Linear, fmt.Errorf("unknown resampler quality '%s'", name)
}

const (
	DefaultQuality   = Linear
	DefaultChunkSize = 512
)

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters for initializing a Converting source.
type Options struct {
	Quality   Quality
	ChunkSize int
}

// WithQuality is a functional option to select the resampling algorithm.
func WithQuality(q Quality) Option {
	return func(args *Options) {
		args.Quality = q
	}
}

// ChunkSize is a functional option which sets the amount of frames pulled
// from the wrapped source per call of the sinc converter. It has no effect
// on linear conversion.
func ChunkSize(n int) Option {
	return func(args *Options) {
		args.ChunkSize = n
	}
}
