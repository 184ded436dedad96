package audio

import "errors"

var (
	// ErrCycle is returned when adding an edge would create a cycle in
	// the graph. The graph is left unchanged.
	ErrCycle = errors.New("edge would create a cycle in the graph")
	// ErrNodeNotFound is returned when an index refers to a removed or
	// unknown node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrSourceConstruction is returned when a file or subprocess source
	// can not be set up.
	ErrSourceConstruction = errors.New("unable to construct source")
	// ErrUnsupportedChannelLayout is returned when decoded audio or an
	// audio device does not provide exactly two channels.
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
)
