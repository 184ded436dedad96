package events

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatchSystemEventsSignal(t *testing.T) {
	ch := WatchSystemEvents(context.Background())

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case sig, ok := <-ch:
		require.True(t, ok)
		assert.Equal(t, syscall.SIGTERM, sig)
	case <-time.After(2 * time.Second):
		t.Fatal("signal not delivered")
	}

	_, ok := <-ch
	assert.False(t, ok)
}

func TestWatchSystemEventsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := WatchSystemEvents(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}
