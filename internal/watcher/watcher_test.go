package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

func TestIsLectureFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/in/lecture.mp3", true},
		{"/in/lecture.MP4", true},
		{"/in/talk.webm", true},
		{"/in/.lecture.mp3", false},
		{"/in/notes.txt", false},
		{"/in/lecture.mp4.part", false},
	}
	for _, tt := range tests {
		if got := isLectureFile(tt.path); got != tt.want {
			t.Errorf("isLectureFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherDispatchesNewFiles(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 4)
	handler := func(ctx context.Context, path string) error {
		mu.Lock()
		seen = append(seen, filepath.Base(path))
		mu.Unlock()
		done <- struct{}{}
		return nil
	}

	w, err := New(dir, handler, logger.Nop(), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.(*implWatcher).settle = time.Millisecond
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- w.Start(ctx) }()

	// give the event loop a moment before creating files
	time.Sleep(50 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "lecture.mp3"), []byte("x"), 0644)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler not called")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "lecture.mp3" {
		t.Errorf("handled = %v", seen)
	}
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), nil, logger.Nop(), 0); err == nil {
		t.Error("expected error for missing input dir")
	}
}

func TestWatcherPicksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "waiting.m4a"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".hidden.mp3"), []byte("x"), 0644)

	done := make(chan string, 4)
	w, err := New(dir, func(ctx context.Context, path string) error {
		done <- filepath.Base(path)
		return nil
	}, logger.Nop(), 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.(*implWatcher).settle = time.Millisecond
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	select {
	case got := <-done:
		if got != "waiting.m4a" {
			t.Errorf("handled %s", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("existing file not handled")
	}
}

func TestDispatchIgnoresDuplicates(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	w := &implWatcher{
		handler: func(ctx context.Context, path string) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil
		},
		logger:   logger.Nop(),
		settle:   20 * time.Millisecond,
		slots:    make(chan struct{}, 1),
		inflight: make(map[string]struct{}),
	}

	ctx := context.Background()
	w.dispatch(ctx, "/in/lecture.mp3")
	w.dispatch(ctx, "/in/lecture.mp3")
	w.wg.Wait()

	// a later event for the same file is a new job
	w.dispatch(ctx, "/in/lecture.mp3")
	w.wg.Wait()

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
	if len(w.inflight) != 0 {
		t.Errorf("inflight not cleared: %v", w.inflight)
	}
}
