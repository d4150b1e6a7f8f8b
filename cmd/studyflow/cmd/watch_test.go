package cmd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

// slowWatcher keeps a handler running for a while after cancellation.
type slowWatcher struct {
	finished atomic.Bool
}

func (w *slowWatcher) Start(ctx context.Context) error {
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	w.finished.Store(true)
	return ctx.Err()
}

func (w *slowWatcher) Stop() error { return nil }

func TestStartWatcherWaitsForHandlers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &slowWatcher{}

	done := startWatcher(ctx, w, logger.Nop())
	select {
	case <-done:
		t.Fatal("done before cancellation")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never finished")
	}
	if !w.finished.Load() {
		t.Error("done closed while a handler was still running")
	}
}
