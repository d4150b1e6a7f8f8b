package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process lectures dropped into the input folder",
	Long: `Monitors the input folder. Every new audio or video file is turned into
study material written to the output folder as markdown, PDF and DOCX, and the
source is moved to the archive folder.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	w, err := watcher.New(a.cfg.Paths.Input, a.processor.Process, a.log, a.cfg.Performance.MaxConcurrent)
	if err != nil {
		a.log.Error(ctx, "Failed to create watcher: %v", err)
		return err
	}
	defer w.Stop()

	a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
	a.log.Info(ctx, "Output: %s", a.cfg.Paths.Output)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error(ctx, "Watcher error: %v", err)
		return err
	}
	a.log.Info(context.Background(), "StudyFlow stopped")
	return nil
}

// startWatcher runs w in the background. The returned channel closes once
// Start has returned, which is after its in-flight handlers finish.
func startWatcher(ctx context.Context, w watcher.Watcher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "Watcher error: %v", err)
		}
	}()
	return done
}
