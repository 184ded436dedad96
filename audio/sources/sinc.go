package sources

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"
	"github.com/dh1tw/graphAudio/audio"
)

// size of the internal output buffer of libsamplerate (in samples)
const srcBufferLen = 65536

// sincResampler feeds chunks of the wrapped source through libsamplerate
// and hands out the converted frames one by one.
type sincResampler struct {
	gosamplerate.Src
	src       audio.Source
	ratio     float64
	chunk     []audio.Frame
	in        []float32
	pending   []audio.Frame
	flushed   bool
	exhausted bool
}

func newSincResampler(src audio.Source, targetHz float64, q Quality, chunkSize int) (*sincResampler, error) {

	ratio := targetHz / src.SampleHz()

	// make sure that one converted chunk always fits into the output buffer
	maxChunk := int(float64(srcBufferLen) / (ratio * audio.Channels * 2))
	if chunkSize <= 0 || chunkSize > maxChunk {
		chunkSize = maxChunk
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("conversion ratio %v out of range", ratio)
	}

	var conv gosamplerate.Src
	var err error
	switch q {
	case SincFastest:
		conv, err = gosamplerate.New(gosamplerate.SRC_SINC_FASTEST, audio.Channels, srcBufferLen)
	case SincMedium:
		conv, err = gosamplerate.New(gosamplerate.SRC_SINC_MEDIUM_QUALITY, audio.Channels, srcBufferLen)
	case SincBest:
		conv, err = gosamplerate.New(gosamplerate.SRC_SINC_BEST_QUALITY, audio.Channels, srcBufferLen)
	default:
		return nil, fmt.Errorf("%v is not a sinc converter", q)
	}
	if err != nil {
		return nil, fmt.Errorf("samplerate converter: %v", err)
	}

	return &sincResampler{
		Src:   conv,
		src:   src,
		ratio: ratio,
		chunk: make([]audio.Frame, chunkSize),
		in:    make([]float32, chunkSize*audio.Channels),
	}, nil
}

func (s *sincResampler) next() audio.Frame {
	for len(s.pending) == 0 {
		if s.flushed {
			s.exhausted = true
			return audio.Equilibrium()
		}
		if err := s.fill(); err != nil {
			s.flushed = true
		}
	}
	fr := s.pending[0]
	s.pending = s.pending[1:]
	return fr
}

// fill pulls one chunk from the source and converts it. Once the source is
// exhausted the converter is told that the end of the input has been
// reached, so that it can flush its internal state.
func (s *sincResampler) fill() error {
	end := s.src.IsExhausted()
	if end {
		s.flushed = true
		audio.Silence(s.chunk)
	} else {
		for i := range s.chunk {
			s.chunk[i] = s.src.Next()
		}
	}
	audio.Interleave(s.chunk, s.in, audio.Channels)

	out, err := s.Process(s.in, s.ratio, end)
	if err != nil {
		return err
	}

	frames := make([]audio.Frame, len(out)/audio.Channels)
	audio.Deinterleave(out, frames)
	s.pending = append(s.pending[:0], frames...)
	return nil
}

func (s *sincResampler) isExhausted() bool {
	return s.exhausted
}

func (s *sincResampler) close() error {
	return gosamplerate.Delete(s.Src)
}
