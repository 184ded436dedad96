package cmdReader

import (
	"bytes"
	"encoding/binary"
	"math"
	"os/exec"
	"testing"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeFrames(frames ...audio.Frame) []byte {
	var buf bytes.Buffer
	for _, fr := range frames {
		for _, s := range fr {
			binary.Write(&buf, binary.BigEndian, math.Float32bits(s))
		}
	}
	return buf.Bytes()
}

func TestStreamReader(t *testing.T) {
	data := encodeFrames(audio.Frame{0.5, -0.5}, audio.Frame{1, -1})
	// trailing half frame must be discarded
	data = append(data, 0x3f, 0x80)

	s := NewStreamReader(bytes.NewReader(data), 22050)
	assert.Equal(t, 22050.0, s.SampleHz())

	assert.Equal(t, audio.Frame{0.5, -0.5}, s.Next())
	assert.False(t, s.IsExhausted())
	assert.Equal(t, audio.Frame{1, -1}, s.Next())

	for i := 0; i < 3; i++ {
		assert.Equal(t, audio.Equilibrium(), s.Next())
		assert.True(t, s.IsExhausted())
	}
}

func TestSpawnFailure(t *testing.T) {
	c, err := NewCmdReader("/this/command/does/not/exist", nil, 48000)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, audio.ErrSourceConstruction)
}

func TestCommandOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	// 1.0 = 0x3f800000, -1.0 = 0xbf800000
	args := []string{"-c", `printf '\077\200\000\000\277\200\000\000'`}
	c, err := NewCmdReader("sh", args, 44100)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "sh", c.Command())
	assert.Equal(t, args, c.Args())
	assert.Nil(t, c.Input())

	assert.Equal(t, audio.Frame{1, -1}, c.Next())
	assert.Equal(t, audio.Equilibrium(), c.Next())
	assert.True(t, c.IsExhausted())
}

func TestCommandInput(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	c, err := NewCmdReader("cat", nil, 48000, TakesInput(true))
	require.NoError(t, err)

	in := c.Input()
	require.NotNil(t, in)

	_, err = in.Write(encodeFrames(audio.Frame{0.25, 0.75}))
	require.NoError(t, err)
	assert.Equal(t, audio.Frame{0.25, 0.75}, c.Next())

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
