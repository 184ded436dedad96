package cmdReader

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/dh1tw/graphAudio/audio"
)

const bytesPerFrame = 4 * audio.Channels

// StreamReader implements the audio.Source interface on top of a raw byte
// stream of interleaved stereo 32 bit float samples in big endian byte order.
// A closed stream or a short read marks the reader as exhausted.
type StreamReader struct {
	r         *bufio.Reader
	sampleHz  float64
	raw       [bytesPerFrame]byte
	exhausted bool
}

// NewStreamReader returns a StreamReader which decodes the frames of r.
// The sample rate is taken as given, since raw PCM streams carry no header.
func NewStreamReader(r io.Reader, sampleHz float64) *StreamReader {
	return &StreamReader{
		r:        bufio.NewReader(r),
		sampleHz: sampleHz,
	}
}

// SampleHz returns the declared sample rate of the stream.
func (s *StreamReader) SampleHz() float64 {
	return s.sampleHz
}

// Next decodes the next frame from the stream.
func (s *StreamReader) Next() audio.Frame {
	if s.exhausted {
		return audio.Equilibrium()
	}

	if _, err := io.ReadFull(s.r, s.raw[:]); err != nil {
		s.exhausted = true
		return audio.Equilibrium()
	}

	var fr audio.Frame
	for ch := range fr {
		bits := binary.BigEndian.Uint32(s.raw[ch*4 : ch*4+4])
		fr[ch] = math.Float32frombits(bits)
	}
	return fr
}

// IsExhausted reports if the end of the stream has been reached.
func (s *StreamReader) IsExhausted() bool {
	return s.exhausted
}
