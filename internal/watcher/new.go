package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

const (
	// defaultSettle is how long a new file is left alone before processing,
	// so copies into the folder can finish.
	defaultSettle  = 500 * time.Millisecond
	defaultWorkers = 2
)

// New watches inputDir and hands every lecture file to handler, at most
// maxConcurrent at a time. Files already in the folder are picked up on Start.
func New(inputDir string, handler EventHandler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(inputDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", inputDir, err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = defaultWorkers
	}

	return &implWatcher{
		inputDir:      inputDir,
		handler:       handler,
		logger:        log,
		fsw:           fsw,
		maxConcurrent: maxConcurrent,
		settle:        defaultSettle,
		slots:         make(chan struct{}, maxConcurrent),
		inflight:      make(map[string]struct{}),
	}, nil
}
