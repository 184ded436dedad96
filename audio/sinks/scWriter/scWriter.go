package scWriter

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/graph"
	glog "github.com/dh1tw/graphAudio/log"
	pa "github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

// ScWriter implements the engine.AudioEngine interface and plays the
// master node of a graph on a local audio output device (e.g. speakers).
// The graph is rendered directly within the portaudio callback.
//
// portaudio.Initialize() must have been called before creating a ScWriter.
type ScWriter struct {
	sync.Mutex
	options    Options
	deviceInfo *pa.DeviceInfo
	stream     *pa.Stream
	renderer   *engine.Renderer
	log        *logrus.Entry
}

// NewScWriter returns a new soundcard writer for a specific audio output
// device. This is typically a speaker or a pair of headphones.
func NewScWriter(opts ...Option) (*ScWriter, error) {

	w := &ScWriter{
		options: Options{
			DeviceName:      "default",
			HostAPI:         "default",
			Channels:        audio.Channels,
			Samplerate:      0,
			FramesPerBuffer: 512,
			SampleFormat:    engine.F32,
		},
		deviceInfo: nil,
	}

	for _, option := range opts {
		option(&w.options)
	}

	if w.options.Logger == nil {
		w.options.Logger = glog.GetLogger()
	}
	w.log = glog.Component(w.options.Logger, "speaker")

	switch w.options.SampleFormat {
	case engine.F32, engine.I16:
	default:
		return nil, fmt.Errorf("sample format %v not supported by portaudio", w.options.SampleFormat)
	}

	var hostAPI *pa.HostApiInfo

	if w.options.HostAPI == "default" {
		switch runtime.GOOS {
		case "windows":
			// try to use WASAPI since it provides lower latency than the
			// other windows audio apis
			ha, err := pa.HostApi(pa.WASAPI)
			if err != nil {
				// try to fallback to the default API
				ha, err = pa.DefaultHostApi()
				if err != nil {
					return nil, fmt.Errorf("unable to determine the default host api - please provide a specific host api")
				}
			}
			hostAPI = ha
		default:
			// all other OS
			ha, err := pa.DefaultHostApi()
			if err != nil {
				return nil, fmt.Errorf("unable to determine the default host api - please provide a specific host api")
			}
			hostAPI = ha
		}
	} else {
		// non-default HostAPI
		ha, err := getHostAPI(w.options.HostAPI)
		if err != nil {
			return nil, err
		}
		hostAPI = ha
	}

	if w.options.DeviceName == "default" {
		w.deviceInfo = hostAPI.DefaultOutputDevice
	} else {
		dev, err := getPaDevice(w.options.DeviceName, hostAPI)
		if err != nil {
			return nil, err
		}
		w.deviceInfo = dev
	}

	if w.deviceInfo == nil {
		return nil, fmt.Errorf("no output device available for host api %s", hostAPI.Name)
	}

	// the graph renders stereo frames; we don't down- or upmix
	if w.options.Channels != audio.Channels || w.deviceInfo.MaxOutputChannels < audio.Channels {
		return nil, fmt.Errorf("%w: device %s offers %d output channel(s), %d requested",
			audio.ErrUnsupportedChannelLayout, w.deviceInfo.Name,
			w.deviceInfo.MaxOutputChannels, w.options.Channels)
	}

	if w.options.Samplerate == 0 {
		w.options.Samplerate = w.deviceInfo.DefaultSampleRate
	}

	if w.options.Latency == 0 {
		w.options.Latency = w.deviceInfo.DefaultLowOutputLatency
	}

	return w, nil
}

// SampleHz returns the sample rate at which the device will be driven.
func (p *ScWriter) SampleHz() float64 {
	return p.options.Samplerate
}

// RunAsync opens the audio stream and starts rendering g from within the
// portaudio callback.
func (p *ScWriter) RunAsync(g *graph.Shared) (engine.BackgroundEngine, error) {
	p.Lock()
	defer p.Unlock()

	if p.stream != nil {
		return engine.BackgroundEngine{}, fmt.Errorf("speaker engine already running")
	}

	p.renderer = engine.NewRenderer(g, p.options.Samplerate,
		engine.NewEngineControls(), p.log, p.options.OnCustom)

	// setup Audio Stream
	streamDeviceParam := pa.StreamDeviceParameters{
		Device:   p.deviceInfo,
		Channels: p.options.Channels,
		Latency:  p.options.Latency,
	}

	streamParm := pa.StreamParameters{
		FramesPerBuffer: p.options.FramesPerBuffer,
		Output:          streamDeviceParam,
		SampleRate:      p.options.Samplerate,
	}

	var stream *pa.Stream
	var err error

	switch p.options.SampleFormat {
	case engine.I16:
		stream, err = pa.OpenStream(streamParm, p.playCbI16)
	default:
		stream, err = pa.OpenStream(streamParm, p.playCbF32)
	}
	if err != nil {
		return engine.BackgroundEngine{},
			fmt.Errorf("unable to open playback audio stream on device %s: %s",
				p.options.DeviceName, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return engine.BackgroundEngine{}, fmt.Errorf("unable to start audio stream: %w", err)
	}

	p.stream = stream
	p.log.WithFields(logrus.Fields{
		"device":     p.deviceInfo.Name,
		"hostAPI":    p.deviceInfo.HostApi.Name,
		"samplerate": p.options.Samplerate,
		"format":     p.options.SampleFormat.String(),
	}).Info("output sound device opened")

	return p.renderer.Background(), nil
}

// portaudio callbacks which will be called continuously when the stream is
// started; they should be short and never block (except for the graph lock)
func (p *ScWriter) playCbF32(out []float32,
	iTime pa.StreamCallbackTimeInfo,
	iFlags pa.StreamCallbackFlags) {
	p.checkFlags(iFlags)
	p.renderer.RenderF32(out, p.options.Channels)
}

func (p *ScWriter) playCbI16(out []int16,
	iTime pa.StreamCallbackTimeInfo,
	iFlags pa.StreamCallbackFlags) {
	p.checkFlags(iFlags)
	p.renderer.RenderI16(out, p.options.Channels)
}

func (p *ScWriter) checkFlags(iFlags pa.StreamCallbackFlags) {
	switch iFlags {
	case pa.OutputUnderflow:
		p.log.Debug("output underflow")
	case pa.OutputOverflow:
		p.log.Debug("output overflow")
	}
}

// Close shuts down properly the soundcard audio device.
func (p *ScWriter) Close() error {
	p.Lock()
	defer p.Unlock()

	if p.stream == nil {
		return nil
	}
	p.stream.Abort()
	err := p.stream.Close()
	p.stream = nil
	return err
}

// getHostAPI takes the name of a supported portaudio host api and returns
// the corresponding portaudio hostApiInfo object
func getHostAPI(name string) (*pa.HostApiInfo, error) {

	var hostAPIType pa.HostApiType

	switch strings.ToLower(name) {
	case "indevelopment":
		hostAPIType = pa.InDevelopment
	case "directsound":
		hostAPIType = pa.DirectSound
	case "mme":
		hostAPIType = pa.MME
	case "asio":
		hostAPIType = pa.ASIO
	case "soundmanager":
		hostAPIType = pa.SoundManager
	case "coreaudio":
		hostAPIType = pa.CoreAudio
	case "oss":
		hostAPIType = pa.OSS
	case "alsa":
		hostAPIType = pa.ALSA
	case "al":
		hostAPIType = pa.AL
	case "beos":
		hostAPIType = pa.BeOS
	case "wdmks":
		hostAPIType = pa.WDMkS
	case "jack":
		hostAPIType = pa.JACK
	case "wasapi":
		hostAPIType = pa.WASAPI
	case "audiosciencehpi":
		hostAPIType = pa.AudioScienceHPI
	default:
		return nil, fmt.Errorf("unknown host api type: %s", name)
	}

	hostAPIInfo, err := pa.HostApi(hostAPIType)
	if err != nil {
		return nil, fmt.Errorf("unable to load host api %s: %s", name, err.Error())
	}

	return hostAPIInfo, nil
}

// getPaDevice checks if the Audio Devices actually exist and
// then returns it
func getPaDevice(name string, hostAPI *pa.HostApiInfo) (*pa.DeviceInfo, error) {
	for _, device := range hostAPI.Devices {
		if strings.EqualFold(device.Name, name) {
			return device, nil
		}
	}
	return nil, fmt.Errorf("unknown audio device '%s'", name)
}
