package cmdReader

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/dh1tw/graphAudio/audio"
)

// CmdReader implements the audio.Source interface and reads audio from the
// standard output of a child process. The process must write interleaved
// stereo 32 bit float samples in big endian byte order. Its standard error
// is discarded.
type CmdReader struct {
	*StreamReader
	sync.Mutex
	options Options
	command string
	args    []string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	closed  bool
}

// NewCmdReader spawns command with args and returns a source decoding its
// output at the declared sample rate. Spawn failures wrap
// audio.ErrSourceConstruction.
func NewCmdReader(command string, args []string, sampleHz float64, opts ...Option) (*CmdReader, error) {

	c := &CmdReader{
		command: command,
		args:    append([]string{}, args...),
	}

	for _, o := range opts {
		o(&c.options)
	}

	cmd := exec.Command(command, c.args...)
	cmd.Dir = c.options.Dir
	cmd.Env = c.options.Env

	if c.options.TakesInput {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("%w: stdin pipe: %v", audio.ErrSourceConstruction, err)
		}
		c.stdin = stdin
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", audio.ErrSourceConstruction, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: unable to start %s: %v", audio.ErrSourceConstruction, command, err)
	}

	c.cmd = cmd
	c.StreamReader = NewStreamReader(stdout, sampleHz)

	return c, nil
}

// Command returns the executable which was invoked.
func (c *CmdReader) Command() string {
	return c.command
}

// Args returns the arguments the executable was invoked with.
func (c *CmdReader) Args() []string {
	return c.args
}

// Input returns the standard input of the child process. It is nil unless
// the reader was created with TakesInput(true).
func (c *CmdReader) Input() io.Writer {
	if c.stdin == nil {
		return nil
	}
	return c.stdin
}

// Close terminates the child process and releases its pipes. It is safe to
// call Close multiple times.
func (c *CmdReader) Close() error {
	c.Lock()
	defer c.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.stdin != nil {
		c.stdin.Close()
	}

	if c.cmd.ProcessState == nil {
		c.cmd.Process.Kill()
	}

	err := c.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// killed or non zero exit code; the stream simply ended
		return nil
	}
	return err
}
