package events

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WatchSystemEvents returns a channel which receives the first interrupt
// (CTRL-C) or terminate signal sent to the process. The channel is closed
// without a value when ctx is done before.
func WatchSystemEvents(ctx context.Context) <-chan os.Signal {

	// Channel to handle OS signals
	osSignals := make(chan os.Signal, 1)
	shutdown := make(chan os.Signal, 1)

	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer close(shutdown)
		defer signal.Stop(osSignals)

		select {
		case osSignal := <-osSignals:
			shutdown <- osSignal
		case <-ctx.Done():
		}
	}()

	return shutdown
}
