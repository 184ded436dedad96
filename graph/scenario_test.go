package graph

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dh1tw/graphAudio/audio"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTones writes a 16 bit stereo wav file at 44.1kHz containing the sum
// of sine waves with the given frequencies.
func writeTones(t *testing.T, name string, freqs ...float64) string {
	t.Helper()

	const (
		sampleRate = 44100
		frames     = 8192
		amplitude  = 0.4
	)

	data := make([]int, 0, frames*2)
	for i := 0; i < frames; i++ {
		var v float64
		for _, f := range freqs {
			v += amplitude * math.Sin(2*math.Pi*f*float64(i)/sampleRate)
		}
		s := int(v * 32767)
		data = append(data, s, s)
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	require.NoError(t, enc.Write(&ga.IntBuffer{
		Data:   data,
		Format: &ga.Format{NumChannels: 2, SampleRate: sampleRate},
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

// chain builds file -> [lowpass] -> [volume] -> master and renders n frames
// at 48kHz.
func chain(t *testing.T, path string, lowpass bool, volume float32, n int) []audio.Frame {
	t.Helper()

	g := NewAudioGraph()
	master := g.AddNode(Volume{Gain: volume})
	require.NoError(t, g.SetMaster(master))

	file, err := NewFile(path, 48000, false)
	require.NoError(t, err)
	t.Cleanup(func() { CloseNode(file) })

	dest := master
	if lowpass {
		_, dest, err = g.AddInput(NewIIRLowpass(500, 48000, false), master)
		require.NoError(t, err)
	}
	_, _, err = g.AddInput(file, dest)
	require.NoError(t, err)

	out := make([]audio.Frame, n)
	g.AudioRequested(out, 48000)
	return out
}

func rms(buf []audio.Frame) float64 {
	var sum float64
	for _, fr := range buf {
		sum += float64(fr[0]) * float64(fr[0])
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func TestFileLowpassVolumeScenario(t *testing.T) {
	path := writeTones(t, "mix.wav", 200, 6000)

	file, err := NewFile(path, 48000, false)
	require.NoError(t, err)
	defer CloseNode(file)
	assert.Equal(t, 44100.0, file.Source.Wrapped.Wrapped().SampleHz())
	assert.Equal(t, 48000.0, file.Source.SampleHz())
	assert.Equal(t, path, file.Source.Wrapped.Wrapped().FilePath())

	unattenuated := chain(t, path, true, 1, 1024)
	out := chain(t, path, true, 0.5, 1024)

	require.Len(t, out, 1024)
	for i := range out {
		for ch := range out[i] {
			assert.LessOrEqual(t, math.Abs(float64(out[i][ch])),
				0.5*math.Abs(float64(unattenuated[i][ch]))+1e-7, "frame %d", i)
		}
	}
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	high := writeTones(t, "high.wav", 6000)
	low := writeTones(t, "low.wav", 200)

	// skip the transient of the filter
	const skip = 256

	highRaw := rms(chain(t, high, false, 1, 1024)[skip:])
	highFiltered := rms(chain(t, high, true, 1, 1024)[skip:])
	require.Greater(t, highRaw, 0.1)
	assert.Less(t, highFiltered, 0.2*highRaw)

	lowRaw := rms(chain(t, low, false, 1, 1024)[skip:])
	lowFiltered := rms(chain(t, low, true, 1, 1024)[skip:])
	assert.Greater(t, lowFiltered, 0.8*lowRaw)
}

func TestPausedFileNode(t *testing.T) {
	path := writeTones(t, "paused.wav", 440)

	g := NewAudioGraph()
	master := g.AddNode(Empty{})
	require.NoError(t, g.SetMaster(master))

	file, err := NewFile(path, 44100, true)
	require.NoError(t, err)
	defer CloseNode(file)
	_, _, err = g.AddInput(file, master)
	require.NoError(t, err)

	out := make([]audio.Frame, 64)
	g.AudioRequested(out, 44100)
	for _, fr := range out {
		assert.Equal(t, audio.Equilibrium(), fr)
	}

	// pointer variants can be modified in place
	file.Source.Paused = false
	g.AudioRequested(out, 44100)
	assert.NotEqual(t, audio.Equilibrium(), out[10])
}

func TestNewFileErrors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.mp3"), 48000, false)
	assert.ErrorIs(t, err, audio.ErrSourceConstruction)

	_, err = NewCommand("/does/not/exist", nil, 48000, 48000, false)
	assert.ErrorIs(t, err, audio.ErrSourceConstruction)
}
