package control

import (
	"fmt"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/audio/sources"
	"github.com/dh1tw/graphAudio/graph"
)

// NodeSpec is the serializable description of a DspNode. Type selects the
// variant, the other fields are only meaningful for the variants which
// use them:
//
//	Volume         level
//	File           filePath, paused
//	Command        command, args, sampleHz, paused
//	MovingAverage  windowSize, disabled
//	IIRLowpass     cutoffHz, disabled
//	IIRHighpass    cutoffHz, disabled
//
// Flags are pointers, so that a replacement can leave them untouched by
// omitting them.
type NodeSpec struct {
	Type       string   `json:"type"`
	Level      *float32 `json:"level,omitempty"`
	FilePath   string   `json:"filePath,omitempty"`
	Command    string   `json:"command,omitempty"`
	Args       []string `json:"args,omitempty"`
	SampleHz   float64  `json:"sampleHz,omitempty"`
	WindowSize int      `json:"windowSize,omitempty"`
	CutoffHz   float32  `json:"cutoffHz,omitempty"`
	Paused     *bool    `json:"paused,omitempty"`
	Disabled   *bool    `json:"disabled,omitempty"`
}

// MaxWindowSize is the largest moving average window which can be
// requested remotely.
const MaxWindowSize = 1 << 20

// EdgeSpec is the serializable form of a graph edge.
type EdgeSpec struct {
	Src  int `json:"src"`
	Dest int `json:"dest"`
}

// GraphSnapshot is the serializable state of the whole graph.
type GraphSnapshot struct {
	Nodes  map[int]NodeSpec `json:"nodes"`
	Edges  []EdgeSpec       `json:"edges"`
	Master *int             `json:"master"`
}

func boolPtr(b bool) *bool { return &b }

func flag(b *bool) bool { return b != nil && *b }

// ToDspNode creates the node described by spec for an engine running at
// sampleHz. File and Command nodes open their resources immediately; the
// caller owns the returned node and has to release it with graph.CloseNode
// if it does not end up in a graph.
func ToDspNode(spec NodeSpec, sampleHz float64, opts ...sources.Option) (graph.DspNode, error) {
	switch spec.Type {
	case graph.KindEmpty.String():
		return graph.Empty{}, nil

	case graph.KindSilence.String():
		return graph.Silence{}, nil

	case graph.KindVolume.String():
		if spec.Level == nil || *spec.Level < 0 {
			return nil, fmt.Errorf("%w: Volume requires a non negative level", ErrInvalidParams)
		}
		return graph.Volume{Gain: *spec.Level}, nil

	case graph.KindFile.String():
		if spec.FilePath == "" {
			return nil, fmt.Errorf("%w: File requires a filePath", ErrInvalidParams)
		}
		return graph.NewFile(spec.FilePath, sampleHz, flag(spec.Paused), opts...)

	case graph.KindCommand.String():
		if spec.Command == "" {
			return nil, fmt.Errorf("%w: Command requires a command", ErrInvalidParams)
		}
		if spec.SampleHz <= 0 || spec.SampleHz > audio.MaxSampleHz {
			return nil, fmt.Errorf("%w: Command requires a sampleHz between 0 and %d",
				ErrInvalidParams, audio.MaxSampleHz)
		}
		return graph.NewCommand(spec.Command, spec.Args, spec.SampleHz,
			sampleHz, flag(spec.Paused), opts...)

	case graph.KindMovingAverage.String():
		if spec.WindowSize <= 0 || spec.WindowSize > MaxWindowSize {
			return nil, fmt.Errorf("%w: MovingAverage requires a windowSize between 1 and %d",
				ErrInvalidParams, MaxWindowSize)
		}
		return graph.NewMovingAverage(spec.WindowSize, flag(spec.Disabled)), nil

	case graph.KindIIRLowpass.String():
		if spec.CutoffHz <= 0 {
			return nil, fmt.Errorf("%w: IIRLowpass requires a positive cutoffHz", ErrInvalidParams)
		}
		return graph.NewIIRLowpass(spec.CutoffHz, sampleHz, flag(spec.Disabled)), nil

	case graph.KindIIRHighpass.String():
		if spec.CutoffHz <= 0 {
			return nil, fmt.Errorf("%w: IIRHighpass requires a positive cutoffHz", ErrInvalidParams)
		}
		return graph.NewIIRHighpass(spec.CutoffHz, sampleHz, flag(spec.Disabled)), nil

	case graph.KindDynSource.String(), graph.KindDynFilter.String():
		return nil, fmt.Errorf("%w: dynamic nodes can not be created remotely", ErrInvalidParams)
	}

	return nil, fmt.Errorf("%w: unknown node type '%s'", ErrInvalidParams, spec.Type)
}

// FromDspNode describes n.
func FromDspNode(n graph.DspNode) NodeSpec {
	spec := NodeSpec{Type: n.Kind().String()}

	switch v := n.(type) {
	case graph.Volume:
		level := v.Gain
		spec.Level = &level
	case graph.File:
		if v.Source != nil {
			spec.FilePath = v.Source.Wrapped.Wrapped().FilePath()
			spec.Paused = boolPtr(v.Source.Paused)
		}
	case graph.Command:
		if v.Source != nil {
			cmd := v.Source.Wrapped.Wrapped()
			spec.Command = cmd.Command()
			spec.Args = cmd.Args()
			spec.SampleHz = cmd.SampleHz()
			spec.Paused = boolPtr(v.Source.Paused)
		}
	case graph.MovingAverage:
		if v.Filter != nil {
			spec.WindowSize = v.Filter.Wrapped.WindowSize()
			spec.Disabled = boolPtr(v.Filter.Disabled)
		}
	case graph.IIRLowpass:
		if v.Filter != nil {
			spec.CutoffHz = v.Filter.Wrapped.CutoffHz()
			spec.Disabled = boolPtr(v.Filter.Disabled)
		}
	case graph.IIRHighpass:
		if v.Filter != nil {
			spec.CutoffHz = v.Filter.Wrapped.CutoffHz()
			spec.Disabled = boolPtr(v.Filter.Disabled)
		}
	}

	return spec
}

// updateInPlace applies spec to n without rebuilding it, which keeps the
// playback position of sources and the history of filters. It reports
// false if spec describes a different node which has to be constructed.
func updateInPlace(n graph.DspNode, spec NodeSpec) bool {
	if n.Kind().String() != spec.Type {
		return false
	}

	switch v := n.(type) {
	case graph.Empty, graph.Silence:
		return true

	case graph.File:
		if v.Source == nil {
			return false
		}
		if spec.FilePath != "" && spec.FilePath != v.Source.Wrapped.Wrapped().FilePath() {
			return false
		}
		if spec.Paused != nil {
			v.Source.Paused = *spec.Paused
		}
		return true

	case graph.Command:
		if v.Source == nil {
			return false
		}
		cmd := v.Source.Wrapped.Wrapped()
		if spec.Command != "" && (spec.Command != cmd.Command() || !equalArgs(spec.Args, cmd.Args())) {
			return false
		}
		if spec.SampleHz != 0 && spec.SampleHz != cmd.SampleHz() {
			return false
		}
		if spec.Paused != nil {
			v.Source.Paused = *spec.Paused
		}
		return true

	case graph.MovingAverage:
		if v.Filter == nil {
			return false
		}
		if spec.WindowSize != 0 && spec.WindowSize != v.Filter.Wrapped.WindowSize() {
			return false
		}
		if spec.Disabled != nil {
			v.Filter.Disabled = *spec.Disabled
		}
		return true

	case graph.IIRLowpass:
		if v.Filter == nil {
			return false
		}
		if spec.CutoffHz > 0 && spec.CutoffHz != v.Filter.Wrapped.CutoffHz() {
			v.Filter.Wrapped = v.Filter.Wrapped.WithCutoffHz(spec.CutoffHz)
		}
		if spec.Disabled != nil {
			v.Filter.Disabled = *spec.Disabled
		}
		return true

	case graph.IIRHighpass:
		if v.Filter == nil {
			return false
		}
		if spec.CutoffHz > 0 && spec.CutoffHz != v.Filter.Wrapped.CutoffHz() {
			v.Filter.Wrapped = v.Filter.Wrapped.WithCutoffHz(spec.CutoffHz)
		}
		if spec.Disabled != nil {
			v.Filter.Disabled = *spec.Disabled
		}
		return true
	}

	return false
}

// carryPauseState hands the pause state of old over to n if both are
// sources of the same kind and the replacing spec did not set one.
func carryPauseState(old, n graph.DspNode, spec NodeSpec) graph.DspNode {
	if spec.Paused != nil {
		return n
	}
	switch o := old.(type) {
	case graph.File:
		if nv, ok := n.(graph.File); ok && o.Source != nil {
			nv.Source = sources.PausableWith(o.Source, nv.Source.Wrapped)
			return nv
		}
	case graph.Command:
		if nv, ok := n.(graph.Command); ok && o.Source != nil {
			nv.Source = sources.PausableWith(o.Source, nv.Source.Wrapped)
			return nv
		}
	}
	return n
}

func equalArgs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
