package wavWriter

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/graph"
	glog "github.com/dh1tw/graphAudio/log"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
)

// WavWriter implements the engine.AudioEngine interface and renders the
// master node of a graph into a stereo wav file. It can be used as an
// output device on headless machines and for offline rendering.
type WavWriter struct {
	sync.Mutex
	file     *os.File
	encoder  *wav.Encoder
	options  Options
	renderer *engine.Renderer
	log      *logrus.Entry
	written  int
	closing  chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error
}

// NewWavWriter returns a wavWriter which renders into the file at path.
// The file is created immediately and finalized by Close.
func NewWavWriter(path string, opts ...Option) (*WavWriter, error) {

	w := &WavWriter{
		options: Options{
			BitDepth:        DefaultBitDepth,
			Samplerate:      DefaultSamplerate,
			FramesPerBuffer: DefaultFramesPerBuffer,
		},
	}

	for _, o := range opts {
		o(&w.options)
	}

	if w.options.Logger == nil {
		w.options.Logger = glog.GetLogger()
	}
	w.log = glog.Component(w.options.Logger, "wav")

	switch w.options.BitDepth {
	case 16, 24:
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", w.options.BitDepth)
	}

	if w.options.Samplerate <= 0 {
		return nil, fmt.Errorf("invalid samplerate %v", w.options.Samplerate)
	}

	if w.options.FramesPerBuffer <= 0 {
		w.options.FramesPerBuffer = DefaultFramesPerBuffer
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w.file = f
	w.encoder = wav.NewEncoder(f, int(w.options.Samplerate),
		w.options.BitDepth, audio.Channels, 1)

	return w, nil
}

// SampleHz returns the sample rate of the wav file.
func (w *WavWriter) SampleHz() float64 {
	return w.options.Samplerate
}

// RunAsync starts rendering g into the wav file on a separate goroutine.
func (w *WavWriter) RunAsync(g *graph.Shared) (engine.BackgroundEngine, error) {
	w.Lock()
	defer w.Unlock()

	if w.done != nil {
		return engine.BackgroundEngine{}, fmt.Errorf("wav engine already running")
	}

	w.renderer = engine.NewRenderer(g, w.options.Samplerate,
		engine.NewEngineControls(), w.log, w.options.OnCustom)
	w.closing = make(chan struct{})
	w.done = make(chan struct{})

	go w.run()

	w.log.WithFields(logrus.Fields{
		"file":       w.file.Name(),
		"samplerate": w.options.Samplerate,
		"bitDepth":   w.options.BitDepth,
	}).Info("rendering into wav file")

	return w.renderer.Background(), nil
}

// Done is closed once the render loop has terminated, either because
// MaxFrames have been written, an error occurred or Close was called.
func (w *WavWriter) Done() <-chan struct{} {
	w.Lock()
	defer w.Unlock()
	return w.done
}

// FramesWritten returns the amount of frames written so far.
func (w *WavWriter) FramesWritten() int {
	w.Lock()
	defer w.Unlock()
	return w.written
}

func (w *WavWriter) run() {
	defer close(w.done)

	frames := make([]audio.Frame, w.options.FramesPerBuffer)
	buf := &ga.IntBuffer{
		Format: &ga.Format{
			SampleRate:  int(w.options.Samplerate),
			NumChannels: audio.Channels,
		},
		SourceBitDepth: w.options.BitDepth,
		Data:           make([]int, 0, len(frames)*audio.Channels),
	}

	var tick <-chan time.Time
	if w.options.Realtime {
		interval := time.Duration(float64(time.Second) *
			float64(w.options.FramesPerBuffer) / w.options.Samplerate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-w.closing:
				return
			case <-tick:
			}
		} else {
			select {
			case <-w.closing:
				return
			default:
			}
		}

		n := len(frames)
		if w.options.MaxFrames > 0 {
			if remaining := w.options.MaxFrames - w.FramesWritten(); remaining < n {
				n = remaining
			}
		}

		w.renderer.RenderFrames(frames[:n])
		toInt(frames[:n], buf)

		if err := w.encoder.Write(buf); err != nil {
			w.log.WithError(err).Error("unable to write to wav file")
			w.Lock()
			w.err = err
			w.Unlock()
			return
		}

		w.Lock()
		w.written += n
		w.Unlock()

		if w.options.MaxFrames > 0 && w.FramesWritten() >= w.options.MaxFrames {
			return
		}
	}
}

// toInt converts frames into interleaved integer samples with the bit
// depth of buf.
func toInt(frames []audio.Frame, buf *ga.IntBuffer) {
	max := float32(int(1)<<(uint(buf.SourceBitDepth)-1) - 1)
	buf.Data = buf.Data[:0]
	for _, fr := range frames {
		for _, s := range fr {
			s = math32.Max(-1, math32.Min(1, s))
			buf.Data = append(buf.Data, int(math32.Round(s*max)))
		}
	}
}

// Close stops the render loop and finalizes the wav file.
func (w *WavWriter) Close() error {
	w.Lock()
	done := w.done
	closing := w.closing
	w.Unlock()

	if done != nil {
		w.stopOnce.Do(func() { close(closing) })
		<-done
	}

	w.Lock()
	defer w.Unlock()

	if w.file == nil {
		return w.err
	}

	err := w.encoder.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.file = nil
	if err != nil {
		return err
	}
	return w.err
}
