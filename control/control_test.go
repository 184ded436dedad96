package control

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/graph"
	glog "github.com/dh1tw/graphAudio/log"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func f32(v float32) *float32 { return &v }

func writeWav(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	buf := &ga.IntBuffer{
		Format:         &ga.Format{SampleRate: 44100, NumChannels: 2},
		SourceBitDepth: 16,
		Data:           make([]int, 2*4410),
	}
	for i := range buf.Data {
		buf.Data[i] = 1000
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func newService(t *testing.T) (*GraphService, *graph.Shared) {
	t.Helper()
	g := graph.NewShared()
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	bg := engine.BackgroundEngine{SampleHz: 48000, Controls: engine.NewEngineControls()}
	return NewGraphService(g, bg, l.WithField("component", "test")), g
}

func TestServiceDefaultLogger(t *testing.T) {
	bg := engine.BackgroundEngine{SampleHz: 48000, Controls: engine.NewEngineControls()}
	svc := NewGraphService(graph.NewShared(), bg, nil)
	require.NotNil(t, svc.log)
	assert.Equal(t, "control", svc.log.Data["component"])
	assert.Equal(t, glog.GetLogger().GetLevel(), svc.log.Logger.GetLevel())
}

func TestToDspNode(t *testing.T) {
	tests := []struct {
		name string
		spec NodeSpec
		kind graph.Kind
		err  error
	}{
		{"empty", NodeSpec{Type: "Empty"}, graph.KindEmpty, nil},
		{"silence", NodeSpec{Type: "Silence"}, graph.KindSilence, nil},
		{"volume", NodeSpec{Type: "Volume", Level: f32(0.5)}, graph.KindVolume, nil},
		{"volume without level", NodeSpec{Type: "Volume"}, 0, ErrInvalidParams},
		{"lowpass", NodeSpec{Type: "IIRLowpass", CutoffHz: 500}, graph.KindIIRLowpass, nil},
		{"highpass", NodeSpec{Type: "IIRHighpass", CutoffHz: 500}, graph.KindIIRHighpass, nil},
		{"lowpass without cutoff", NodeSpec{Type: "IIRLowpass"}, 0, ErrInvalidParams},
		{"moving average", NodeSpec{Type: "MovingAverage", WindowSize: 4}, graph.KindMovingAverage, nil},
		{"moving average without size", NodeSpec{Type: "MovingAverage"}, 0, ErrInvalidParams},
		{"moving average too large", NodeSpec{Type: "MovingAverage", WindowSize: MaxWindowSize + 1}, 0, ErrInvalidParams},
		{"file without path", NodeSpec{Type: "File"}, 0, ErrInvalidParams},
		{"missing file", NodeSpec{Type: "File", FilePath: "/does/not/exist.wav"}, 0, audio.ErrSourceConstruction},
		{"command without rate", NodeSpec{Type: "Command", Command: "cat"}, 0, ErrInvalidParams},
		{"command with excessive rate", NodeSpec{Type: "Command", Command: "cat", SampleHz: 1e12}, 0, ErrInvalidParams},
		{"dyn source", NodeSpec{Type: "DynSource"}, 0, ErrInvalidParams},
		{"dyn filter", NodeSpec{Type: "DynFilter"}, 0, ErrInvalidParams},
		{"unknown", NodeSpec{Type: "Reverb"}, 0, ErrInvalidParams},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := ToDspNode(tc.spec, 48000)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, n.Kind())
		})
	}
}

func TestFromDspNode(t *testing.T) {
	spec := FromDspNode(graph.NewIIRLowpass(500, 48000, true))
	assert.Equal(t, "IIRLowpass", spec.Type)
	assert.Equal(t, float32(500), spec.CutoffHz)
	require.NotNil(t, spec.Disabled)
	assert.True(t, *spec.Disabled)

	spec = FromDspNode(graph.NewMovingAverage(8, false))
	assert.Equal(t, 8, spec.WindowSize)
	assert.False(t, *spec.Disabled)

	spec = FromDspNode(graph.Volume{Gain: 0.25})
	assert.Equal(t, float32(0.25), *spec.Level)

	spec = FromDspNode(graph.DynFilter{Filter: audio.FilterFunc(func(f audio.Frame) audio.Frame { return f })})
	assert.Equal(t, NodeSpec{Type: "DynFilter"}, spec)

	path := writeWav(t, "a.wav")
	n, err := ToDspNode(NodeSpec{Type: "File", FilePath: path, Paused: boolPtr(true)}, 48000)
	require.NoError(t, err)
	defer graph.CloseNode(n)

	spec = FromDspNode(n)
	assert.Equal(t, path, spec.FilePath)
	assert.True(t, *spec.Paused)
}

func TestNodeSpecJSON(t *testing.T) {
	var spec NodeSpec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"File","filePath":"a.wav","paused":true}`), &spec))
	assert.Equal(t, "File", spec.Type)
	assert.Equal(t, "a.wav", spec.FilePath)
	assert.True(t, *spec.Paused)

	b, err := json.Marshal(NodeSpec{Type: "Volume", Level: f32(0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Volume","level":0}`, string(b))
}

func TestServiceBuildsGraph(t *testing.T) {
	svc, _ := newService(t)

	var snapshots []GraphSnapshot
	svc.OnChange(func(s GraphSnapshot) {
		snapshots = append(snapshots, s)
	})

	vol, err := svc.AddNode(NodeSpec{Type: "Volume", Level: f32(0.5)})
	require.NoError(t, err)
	assert.Equal(t, 1, vol)

	_, err = svc.AddEdge(vol, 0)
	require.NoError(t, err)

	_, err = svc.AddEdge(0, vol)
	assert.ErrorIs(t, err, audio.ErrCycle)

	require.NoError(t, svc.SetMaster(vol))
	assert.ErrorIs(t, svc.SetMaster(42), audio.ErrNodeNotFound)

	snap := svc.Get()
	assert.Len(t, snap.Nodes, 2)
	assert.Equal(t, "Empty", snap.Nodes[0].Type)
	assert.Equal(t, "Volume", snap.Nodes[1].Type)
	assert.Equal(t, []EdgeSpec{{Src: 1, Dest: 0}}, snap.Edges)
	require.NotNil(t, snap.Master)
	assert.Equal(t, 1, *snap.Master)

	// failed mutations don't notify
	require.Len(t, snapshots, 3)
	assert.Equal(t, snap, snapshots[2])

	require.NoError(t, svc.RemoveNode(vol))
	assert.ErrorIs(t, svc.RemoveNode(vol), audio.ErrNodeNotFound)

	snap = svc.Get()
	assert.Len(t, snap.Nodes, 1)
	assert.Empty(t, snap.Edges)
	assert.Nil(t, snap.Master)
}

func TestReplaceNodeKeepsFilterState(t *testing.T) {
	svc, g := newService(t)

	idx, err := svc.AddNode(NodeSpec{Type: "IIRLowpass", CutoffHz: 500})
	require.NoError(t, err)

	before, err := g.Node(graph.NodeIndex(idx))
	require.NoError(t, err)

	require.NoError(t, svc.ReplaceNode(idx, NodeSpec{Type: "IIRLowpass", CutoffHz: 1000, Disabled: boolPtr(true)}))

	after, err := g.Node(graph.NodeIndex(idx))
	require.NoError(t, err)
	assert.Same(t, before.(graph.IIRLowpass).Filter, after.(graph.IIRLowpass).Filter)

	spec := FromDspNode(after)
	assert.Equal(t, float32(1000), spec.CutoffHz)
	assert.True(t, *spec.Disabled)

	// a different kind rebuilds the node
	require.NoError(t, svc.ReplaceNode(idx, NodeSpec{Type: "IIRHighpass", CutoffHz: 200}))
	after, err = g.Node(graph.NodeIndex(idx))
	require.NoError(t, err)
	assert.Equal(t, graph.KindIIRHighpass, after.Kind())

	assert.ErrorIs(t, svc.ReplaceNode(99, NodeSpec{Type: "Empty"}), audio.ErrNodeNotFound)
	assert.ErrorIs(t, svc.ReplaceNode(idx, NodeSpec{Type: "DynFilter"}), ErrInvalidParams)
}

func TestReplaceNodeCarriesPauseState(t *testing.T) {
	svc, g := newService(t)

	a := writeWav(t, "a.wav")
	b := writeWav(t, "b.wav")

	idx, err := svc.AddNode(NodeSpec{Type: "File", FilePath: a, Paused: boolPtr(true)})
	require.NoError(t, err)

	// only the flag changes, the source keeps its position
	before, _ := g.Node(graph.NodeIndex(idx))
	require.NoError(t, svc.ReplaceNode(idx, NodeSpec{Type: "File", Paused: boolPtr(false)}))
	after, _ := g.Node(graph.NodeIndex(idx))
	assert.Same(t, before.(graph.File).Source, after.(graph.File).Source)
	assert.False(t, after.(graph.File).Source.Paused)

	require.NoError(t, svc.ReplaceNode(idx, NodeSpec{Type: "File", Paused: boolPtr(true)}))

	// a new file without pause flag inherits the state of the old one
	require.NoError(t, svc.ReplaceNode(idx, NodeSpec{Type: "File", FilePath: b}))
	after, _ = g.Node(graph.NodeIndex(idx))
	spec := FromDspNode(after)
	assert.Equal(t, b, spec.FilePath)
	assert.True(t, *spec.Paused)

	require.NoError(t, svc.RemoveNode(idx))
}

func TestServicePlayPause(t *testing.T) {
	svc, _ := newService(t)

	require.NoError(t, svc.Pause(context.Background()))

	// the engine has not consumed the pause message yet
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Play(ctx), context.DeadlineExceeded)
}

func TestDispatch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	call := func(method, params string) Response {
		req := Request{ID: json.RawMessage(`1`), Method: method}
		if params != "" {
			req.Params = json.RawMessage(params)
		}
		return Dispatch(ctx, svc, req)
	}

	res := call(MethodAddNode, `{"type":"Volume","level":0.5}`)
	require.Nil(t, res.Error)
	assert.Equal(t, 1, res.Result)
	assert.Equal(t, json.RawMessage(`1`), res.ID)

	res = call(MethodAddEdge, `{"src":1,"dest":0}`)
	require.Nil(t, res.Error)

	res = call(MethodAddEdge, `{"src":0,"dest":1}`)
	require.NotNil(t, res.Error)
	assert.Equal(t, CodeInvalidParams, res.Error.Code)

	res = call(MethodSetMaster, `{"index":1}`)
	require.Nil(t, res.Error)
	assert.Equal(t, true, res.Result)

	res = call(MethodReplaceNode, `{"index":1,"node":{"type":"Volume","level":0.1}}`)
	require.Nil(t, res.Error)

	res = call(MethodGet, "")
	require.Nil(t, res.Error)
	snap := res.Result.(GraphSnapshot)
	assert.Equal(t, float32(0.1), *snap.Nodes[1].Level)

	res = call(MethodClearMaster, "")
	require.Nil(t, res.Error)
	res = call(MethodGet, "")
	require.Nil(t, res.Error)
	assert.Nil(t, res.Result.(GraphSnapshot).Master)
	call(MethodSetMaster, `{"index":1}`)

	res = call(MethodRemoveNode, `{}`)
	assert.Equal(t, CodeInvalidParams, res.Error.Code)

	res = call(MethodRemoveNode, `{"index":1}`)
	require.Nil(t, res.Error)

	res = call(MethodAddNode, `{"type":"File","filePath":"/does/not/exist.wav"}`)
	require.NotNil(t, res.Error)
	assert.Equal(t, CodeServerError, res.Error.Code)

	res = call(MethodAddNode, `not json`)
	assert.Equal(t, CodeInvalidParams, res.Error.Code)

	res = call("audioGraph.removeEdge", `{}`)
	assert.Equal(t, CodeMethodNotFound, res.Error.Code)

	res = call(MethodPause, "")
	require.Nil(t, res.Error)

	b, err := json.Marshal(call("nope", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"error":{"code":-32601,"message":"method 'nope' not found"}}`, string(b))
}
