package graph

import (
	"fmt"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/audio/filters"
	"github.com/dh1tw/graphAudio/audio/sources"
	"github.com/dh1tw/graphAudio/audio/sources/cmdReader"
	"github.com/dh1tw/graphAudio/audio/sources/fileReader"
)

// FileSource is the source chain carried by a File node.
type FileSource = sources.Pausable[*sources.Converting[*fileReader.FileReader]]

// CommandSource is the source chain carried by a Command node.
type CommandSource = sources.Pausable[*sources.Converting[*cmdReader.CmdReader]]

// DspNode is the processing unit stored in every vertex of the graph. The
// set of node types is closed; Dynamic sources and filters which are not
// known to this package can be added through DynSource and DynFilter.
type DspNode interface {
	// Kind returns the type tag of the node.
	Kind() Kind
	isDspNode()
}

// Kind identifies the type of a DspNode.
type Kind int

const (
	KindEmpty Kind = iota
	KindSilence
	KindVolume
	KindFile
	KindCommand
	KindDynSource
	KindMovingAverage
	KindIIRLowpass
	KindIIRHighpass
	KindDynFilter
)

var kindNames = map[Kind]string{
	KindEmpty:         "Empty",
	KindSilence:       "Silence",
	KindVolume:        "Volume",
	KindFile:          "File",
	KindCommand:       "Command",
	KindDynSource:     "DynSource",
	KindMovingAverage: "MovingAverage",
	KindIIRLowpass:    "IIRLowpass",
	KindIIRHighpass:   "IIRHighpass",
	KindDynFilter:     "DynFilter",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Empty leaves the buffer as it has been mixed from the inputs of the node.
type Empty struct{}

// Silence overwrites the buffer with the equilibrium frame.
type Silence struct{}

// Volume scales every frame of the buffer by Gain.
type Volume struct {
	Gain float32
}

// File plays a decoded audio file.
type File struct {
	Source *FileSource
}

// Command plays the output of a child process.
type Command struct {
	Source *CommandSource
}

// DynSource plays an arbitrary source.
type DynSource struct {
	Source audio.Source
}

// MovingAverage smoothes the buffer with a moving average filter.
type MovingAverage struct {
	Filter *filters.Disableable[*filters.MovingAverage]
}

// IIRLowpass runs the buffer through a one pole low pass filter.
type IIRLowpass struct {
	Filter *filters.Disableable[*filters.IIRLowpass]
}

// IIRHighpass runs the buffer through a one pole high pass filter.
type IIRHighpass struct {
	Filter *filters.Disableable[*filters.IIRHighpass]
}

// DynFilter runs the buffer through an arbitrary filter.
type DynFilter struct {
	Filter audio.Filter
}

func (Empty) Kind() Kind         { return KindEmpty }
func (Silence) Kind() Kind       { return KindSilence }
func (Volume) Kind() Kind        { return KindVolume }
func (File) Kind() Kind          { return KindFile }
func (Command) Kind() Kind       { return KindCommand }
func (DynSource) Kind() Kind     { return KindDynSource }
func (MovingAverage) Kind() Kind { return KindMovingAverage }
func (IIRLowpass) Kind() Kind    { return KindIIRLowpass }
func (IIRHighpass) Kind() Kind   { return KindIIRHighpass }
func (DynFilter) Kind() Kind     { return KindDynFilter }

func (Empty) isDspNode()         {}
func (Silence) isDspNode()       {}
func (Volume) isDspNode()        {}
func (File) isDspNode()          {}
func (Command) isDspNode()       {}
func (DynSource) isDspNode()     {}
func (MovingAverage) isDspNode() {}
func (IIRLowpass) isDspNode()    {}
func (IIRHighpass) isDspNode()   {}
func (DynFilter) isDspNode()     {}

// NewFile opens the audio file at path and returns a File node delivering
// its frames at sampleHz.
func NewFile(path string, sampleHz float64, paused bool, opts ...sources.Option) (File, error) {
	r, err := fileReader.NewFileReader(path)
	if err != nil {
		return File{}, err
	}
	return File{
		Source: sources.NewPausable(sources.ToSampleHz(sampleHz, r, opts...), paused),
	}, nil
}

// NewCommand spawns command and returns a Command node delivering its
// output, declared to run at sourceHz, at sampleHz.
func NewCommand(command string, args []string, sourceHz, sampleHz float64, paused bool, opts ...sources.Option) (Command, error) {
	r, err := cmdReader.NewCmdReader(command, args, sourceHz)
	if err != nil {
		return Command{}, err
	}
	return Command{
		Source: sources.NewPausable(sources.ToSampleHz(sampleHz, r, opts...), paused),
	}, nil
}

// NewIIRLowpass returns an IIRLowpass node for audio at sampleHz.
func NewIIRLowpass(cutoffHz float32, sampleHz float64, disabled bool) IIRLowpass {
	return IIRLowpass{
		Filter: filters.NewDisableable(filters.NewIIRLowpass(cutoffHz, sampleHz), disabled),
	}
}

// NewIIRHighpass returns an IIRHighpass node for audio at sampleHz.
func NewIIRHighpass(cutoffHz float32, sampleHz float64, disabled bool) IIRHighpass {
	return IIRHighpass{
		Filter: filters.NewDisableable(filters.NewIIRHighpass(cutoffHz, sampleHz), disabled),
	}
}

// NewMovingAverage returns a MovingAverage node over size frames.
func NewMovingAverage(size int, disabled bool) MovingAverage {
	return MovingAverage{
		Filter: filters.NewDisableable(filters.NewMovingAverage(size), disabled),
	}
}

// CloseNode releases the files and processes held by n. Nodes without such
// resources are ignored.
func CloseNode(n DspNode) error {
	switch v := n.(type) {
	case File:
		if v.Source != nil {
			return v.Source.Close()
		}
	case Command:
		if v.Source != nil {
			return v.Source.Close()
		}
	case DynSource:
		return audio.Close(v.Source)
	}
	return nil
}

// process runs n over buf. Sources overwrite the buffer, filters and
// primitives transform what has been mixed into it.
func process(n DspNode, buf []audio.Frame, sampleHz float64) {
	switch v := n.(type) {
	case Empty:
	case Silence:
		audio.Silence(buf)
	case Volume:
		audio.AdjustVolume(v.Gain, buf)
	case File:
		for i := range buf {
			buf[i] = v.Source.Next()
		}
	case Command:
		for i := range buf {
			buf[i] = v.Source.Next()
		}
	case DynSource:
		for i := range buf {
			buf[i] = v.Source.Next()
		}
	case MovingAverage:
		for i := range buf {
			buf[i] = v.Filter.Apply(buf[i])
		}
	case IIRLowpass:
		for i := range buf {
			buf[i] = v.Filter.Apply(buf[i])
		}
	case IIRHighpass:
		for i := range buf {
			buf[i] = v.Filter.Apply(buf[i])
		}
	case DynFilter:
		for i := range buf {
			buf[i] = v.Filter.Apply(buf[i])
		}
	}
}
