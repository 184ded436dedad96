package fileReader

import (
	"fmt"
	"io"

	"github.com/dh1tw/graphAudio/audio"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
)

const wavFormatPCM = 1

type wavDecoder struct {
	dec    *wav.Decoder
	ibuf   *ga.IntBuffer
	offset int
	scale  float32
}

func newWavDecoder(r io.ReadSeeker) (*wavDecoder, error) {

	dec := wav.NewDecoder(r)

	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", audio.ErrSourceConstruction)
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: unsupported WAV encoding %d",
			audio.ErrSourceConstruction, dec.WavAudioFormat)
	}

	if int(dec.NumChans) != audio.Channels {
		return nil, fmt.Errorf("%w: WAV file has %d channel(s)",
			audio.ErrUnsupportedChannelLayout, dec.NumChans)
	}

	w := &wavDecoder{
		dec: dec,
		ibuf: &ga.IntBuffer{
			Format: dec.Format(),
		},
	}

	switch dec.BitDepth {
	case 8:
		// 8 bit WAV samples are unsigned
		w.offset = 128
		w.scale = 128
	case 16, 24, 32:
		w.scale = float32(int64(1) << (dec.BitDepth - 1))
	default:
		return nil, fmt.Errorf("%w: unsupported WAV bit depth %d",
			audio.ErrSourceConstruction, dec.BitDepth)
	}

	return w, nil
}

func (w *wavDecoder) sampleHz() float64 {
	return float64(w.dec.SampleRate)
}

func (w *wavDecoder) read(buf []audio.Frame) (int, error) {
	need := len(buf) * audio.Channels
	if cap(w.ibuf.Data) < need {
		w.ibuf.Data = make([]int, need)
	}
	w.ibuf.Data = w.ibuf.Data[:need]

	n, err := w.dec.PCMBuffer(w.ibuf)
	frames := n / audio.Channels

	for i := 0; i < frames; i++ {
		for ch := 0; ch < audio.Channels; ch++ {
			s := w.ibuf.Data[i*audio.Channels+ch] - w.offset
			buf[i][ch] = float32(s) / w.scale
		}
	}

	if err != nil {
		return frames, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return frames, nil
}
