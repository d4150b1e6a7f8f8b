package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/processor"
	"github.com/nguyentantai21042004/study-flow/internal/qa"
	"github.com/nguyentantai21042004/study-flow/internal/session"
	"github.com/nguyentantai21042004/study-flow/internal/summarizer"
	"github.com/nguyentantai21042004/study-flow/internal/textproc"
	"github.com/nguyentantai21042004/study-flow/internal/transcriber"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

// app holds everything built once at startup and shared by all sessions.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	toolkit    media.Toolkit
	summarizer summarizer.Summarizer
	answerer   qa.Answerer
	store      session.Store
	processor  processor.Processor
}

// newApp loads the config and wires the pipeline. The session store is only
// opened when persist is set.
func newApp(ctx context.Context, persist bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	log.Info(ctx, "========================================")
	log.Info(ctx, "StudyFlow")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Max Concurrent Sessions: %d", cfg.Performance.MaxConcurrent)

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	exec := executor.New()
	toolkit := media.Detect(ctx, media.ToolConfig{
		FFmpegPath:     cfg.FFmpeg.BinaryPath,
		Filters:        cfg.FFmpeg.Filters,
		SegmentSeconds: cfg.FFmpeg.SegmentSeconds,
	}, exec, log)

	rec := newRecognizer(ctx, cfg, exec, log)
	trans := transcriber.New(rec, toolkit, transcriber.Options{
		Language:        cfg.Whisper.Language,
		MinSegmentBytes: cfg.Whisper.MinSegmentBytes,
	}, log)

	var gen summarizer.Generator
	if len(cfg.Gemini.APIKeys) > 0 {
		gen, err = summarizer.NewGemini(ctx, cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
		if err != nil {
			log.Warn(ctx, "Generative model unavailable, using simple mode: %v", err)
			gen = nil
		}
	} else {
		log.Warn(ctx, "No Gemini API key configured, using simple mode")
	}
	sum := summarizer.New(gen, log)

	var qaGen summarizer.Generator
	if cfg.QA.UseModel {
		qaGen = gen
	}
	answerer := qa.New(qaGen, cfg.QA.ExcerptChars, log)

	a := &app{
		cfg:        cfg,
		log:        log,
		toolkit:    toolkit,
		summarizer: sum,
		answerer:   answerer,
	}

	if persist {
		store, err := session.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		if n, err := store.FailInterrupted(ctx); err != nil {
			log.Warn(ctx, "Failed to close out interrupted sessions: %v", err)
		} else if n > 0 {
			log.Warn(ctx, "Marked %d interrupted session(s) as failed", n)
		}
		a.store = store
	}

	a.processor = processor.New(cfg, processor.Deps{
		Toolkit:     toolkit,
		Downloader:  media.NewDownloader(cfg.Downloader.BinaryPath, cfg.Downloader.Format, exec, log),
		Transcriber: trans,
		Cleaner:     textproc.NewCleaner(cfg.Text.Fillers),
		Summarizer:  sum,
		Store:       a.store,
		Logger:      log,
	})

	log.Info(ctx, "Media mode: %s", toolkit.Mode)
	log.Info(ctx, "Recognizer: %s (%s)", rec.Name(), cfg.Whisper.Language)
	log.Info(ctx, "Summarizer: %s", sum.Kind())
	return a, nil
}

func newRecognizer(ctx context.Context, cfg *config.Config, exec executor.Executor, log logger.Logger) transcriber.Recognizer {
	if cfg.Whisper.Backend == "http" {
		rec := transcriber.NewHTTP(transcriber.HTTPConfig{
			URL:     cfg.Whisper.URL,
			Model:   cfg.Whisper.Model,
			Timeout: cfg.Whisper.Timeout,
		})
		if h, ok := rec.(interface{ Healthy(context.Context) bool }); ok && !h.Healthy(ctx) {
			log.Warn(ctx, "Whisper service at %s is not answering yet", cfg.Whisper.URL)
		}
		return rec
	}
	return transcriber.NewCLI(transcriber.CLIConfig{
		BinaryPath: cfg.Whisper.BinaryPath,
		ModelPath:  cfg.Whisper.ModelPath,
		Threads:    cfg.Whisper.Threads,
	}, exec)
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn(context.Background(), "Close session store: %v", err)
		}
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
