package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/study-flow/internal/httpapi"
	"github.com/nguyentantai21042004/study-flow/internal/watcher"
	"github.com/spf13/cobra"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API. Sessions are created by uploading audio or video
or by submitting a URL, and report progress over a websocket.

With --watch the input folder is monitored at the same time.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "also process files dropped into the input folder")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	var watchDone <-chan struct{}
	if serveWatch {
		w, err := watcher.New(a.cfg.Paths.Input, a.processor.Process, a.log, a.cfg.Performance.MaxConcurrent)
		if err != nil {
			a.log.Error(ctx, "Failed to create watcher: %v", err)
			return err
		}
		defer w.Stop()
		watchDone = startWatcher(ctx, w, a.log)
		a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
	}

	srv := httpapi.New(a.cfg, httpapi.Deps{
		Processor:      a.processor,
		Store:          a.store,
		Answerer:       a.answerer,
		Mode:           a.toolkit.Mode,
		SummarizerKind: a.summarizer.Kind(),
		Logger:         a.log,
	})

	a.log.Info(ctx, "Max upload: %d MB", a.cfg.Server.MaxUploadMB)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	err = srv.Run(ctx)
	if watchDone != nil {
		// the watcher's handlers write to the store, which closes on return
		stop()
		<-watchDone
	}
	a.log.Info(context.Background(), "StudyFlow stopped")
	return err
}
