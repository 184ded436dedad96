package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	exitMu    sync.Mutex
	exitHooks []func()
)

// onExit registers fn to be run on shutdown, both on a regular return of
// a command and on exit(). Hooks run in reverse order of registration.
func onExit(fn func()) {
	exitMu.Lock()
	defer exitMu.Unlock()
	exitHooks = append(exitHooks, fn)
}

// runExitHooks runs and clears all registered hooks. It is safe to call
// more than once.
func runExitHooks() {
	exitMu.Lock()
	hooks := exitHooks
	exitHooks = nil
	exitMu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

// exit prints err, closes whatever has been opened so far (e.g. to
// finalize a wav file), releases portaudio and terminates the process.
func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	runExitHooks()
	portaudio.Terminate()
	os.Exit(1)
}
