package engine

import (
	"context"
	"fmt"

	"github.com/dh1tw/graphAudio/graph"
)

// ControlKind identifies the type of a ControlMsg.
type ControlKind int

const (
	// Play resumes rendering of the graph.
	Play ControlKind = iota
	// Pause stops rendering; the engine outputs silence.
	Pause
	// Custom carries an arbitrary text message to the engine.
	Custom
)

func (k ControlKind) String() string {
	switch k {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Custom:
		return "custom"
	}
	return fmt.Sprintf("ControlKind(%d)", int(k))
}

// ControlMsg is an engine level command. It is unrelated to the state of
// the nodes in the graph (e.g. a paused file node).
type ControlMsg struct {
	Kind ControlKind
	Text string
}

// PlayMsg returns a Play message.
func PlayMsg() ControlMsg { return ControlMsg{Kind: Play} }

// PauseMsg returns a Pause message.
func PauseMsg() ControlMsg { return ControlMsg{Kind: Pause} }

// CustomMsg returns a Custom message carrying text.
func CustomMsg(text string) ControlMsg { return ControlMsg{Kind: Custom, Text: text} }

func (m ControlMsg) String() string {
	if m.Kind == Custom {
		return fmt.Sprintf("custom(%s)", m.Text)
	}
	return m.Kind.String()
}

// EngineControls hands control messages to the render thread. The channel
// holds a single message; sending blocks while the previous message has
// not been picked up. EngineControls can be copied freely.
type EngineControls struct {
	ch chan ControlMsg
}

// NewEngineControls returns a new control channel.
func NewEngineControls() EngineControls {
	return EngineControls{ch: make(chan ControlMsg, 1)}
}

// Send passes msg to the engine. It blocks until there is room in the
// channel. Send must not be called from the render thread.
func (c EngineControls) Send(msg ControlMsg) {
	c.ch <- msg
}

// SendContext is like Send but gives up when ctx is done.
func (c EngineControls) SendContext(ctx context.Context, msg ControlMsg) error {
	select {
	case c.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// poll returns a pending message without blocking.
func (c EngineControls) poll() (ControlMsg, bool) {
	select {
	case msg := <-c.ch:
		return msg, true
	default:
		return ControlMsg{}, false
	}
}

// BackgroundEngine describes an engine which renders on its own thread.
type BackgroundEngine struct {
	// SampleHz is the negotiated output sample rate.
	SampleHz float64
	Controls EngineControls
}

// AudioEngine is implemented by the output backends. RunAsync starts
// rendering the graph on a background thread and returns immediately.
type AudioEngine interface {
	RunAsync(g *graph.Shared) (BackgroundEngine, error)
	Close() error
}
