package fileReader

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes into 16 bit little endian stereo
const mp3BytesPerFrame = 4

type mp3Decoder struct {
	dec *mp3.Decoder
	raw []byte
}

func newMp3Decoder(r io.Reader) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid MP3 file: %v", audio.ErrSourceConstruction, err)
	}
	return &mp3Decoder{dec: dec}, nil
}

func (m *mp3Decoder) sampleHz() float64 {
	return float64(m.dec.SampleRate())
}

func (m *mp3Decoder) read(buf []audio.Frame) (int, error) {
	need := len(buf) * mp3BytesPerFrame
	if cap(m.raw) < need {
		m.raw = make([]byte, need)
	}
	m.raw = m.raw[:need]

	n, err := io.ReadFull(m.dec, m.raw)
	frames := n / mp3BytesPerFrame

	for i := 0; i < frames; i++ {
		b := m.raw[i*mp3BytesPerFrame:]
		l := int16(binary.LittleEndian.Uint16(b[0:2]))
		r := int16(binary.LittleEndian.Uint16(b[2:4]))
		buf[i] = audio.Frame{float32(l) / 32768, float32(r) / 32768}
	}

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return frames, err
}
