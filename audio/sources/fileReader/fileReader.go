package fileReader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dh1tw/graphAudio/audio"
)

// decoder reads stereo frames from an audio container. read returns an
// error (typically io.EOF) once no more frames are available.
type decoder interface {
	sampleHz() float64
	read(buf []audio.Frame) (int, error)
}

// FileReader implements the audio.Source interface and streams the frames of
// a local audio file. The file is decoded in chunks of FramesPerBuffer frames.
// Supported containers are WAV and MP3, selected by the file extension.
type FileReader struct {
	options   Options
	path      string
	file      *os.File
	dec       decoder
	buf       []audio.Frame
	pos       int
	exhausted bool
}

// NewFileReader opens the file at path and sets up a decoder for it.
// Errors wrap audio.ErrSourceConstruction, or audio.ErrUnsupportedChannelLayout
// if the file does not contain exactly two channels.
func NewFileReader(path string, opts ...Option) (*FileReader, error) {

	r := &FileReader{
		options: Options{
			FramesPerBuffer: DefaultFramesPerBuffer,
		},
		path: path,
	}

	for _, o := range opts {
		o(&r.options)
	}

	if r.options.FramesPerBuffer <= 0 {
		r.options.FramesPerBuffer = DefaultFramesPerBuffer
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3":
	case "":
		return nil, fmt.Errorf("%w: file %s has no extension", audio.ErrSourceConstruction, path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %s", audio.ErrSourceConstruction, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrSourceConstruction, err)
	}

	var dec decoder
	switch ext {
	case ".wav":
		dec, err = newWavDecoder(f)
	case ".mp3":
		dec, err = newMp3Decoder(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	if hz := dec.sampleHz(); hz <= 0 || hz > audio.MaxSampleHz {
		f.Close()
		return nil, fmt.Errorf("%w: unsupported sample rate %v Hz", audio.ErrSourceConstruction, hz)
	}

	r.file = f
	r.dec = dec
	r.buf = make([]audio.Frame, 0, r.options.FramesPerBuffer)

	return r, nil
}

// FilePath returns the path of the file which is being played.
func (r *FileReader) FilePath() string {
	return r.path
}

// SampleHz returns the sample rate of the file.
func (r *FileReader) SampleHz() float64 {
	return r.dec.sampleHz()
}

// Next returns the next frame of the file. Once the end of the file has been
// reached or the decoder failed, the equilibrium frame is returned.
func (r *FileReader) Next() audio.Frame {
	if r.pos >= len(r.buf) {
		if r.exhausted || !r.fill() {
			return audio.Equilibrium()
		}
	}
	fr := r.buf[r.pos]
	r.pos++
	return fr
}

// IsExhausted reports if the file has been read completely.
func (r *FileReader) IsExhausted() bool {
	return r.exhausted && r.pos >= len(r.buf)
}

// Close closes the underlying file.
func (r *FileReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.exhausted = true
	return err
}

func (r *FileReader) fill() bool {
	r.buf = r.buf[:cap(r.buf)]
	n, err := r.dec.read(r.buf)
	r.buf = r.buf[:n]
	r.pos = 0
	// decoding errors end the stream like a regular EOF
	if err != nil || n == 0 {
		r.exhausted = true
	}
	return n > 0
}
