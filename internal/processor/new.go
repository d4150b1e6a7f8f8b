package processor

import (
	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/session"
	"github.com/nguyentantai21042004/study-flow/internal/summarizer"
	"github.com/nguyentantai21042004/study-flow/internal/textproc"
	"github.com/nguyentantai21042004/study-flow/internal/transcriber"
)

// Deps are the collaborators a Processor drives. They are built once at
// startup and shared read-only between sessions.
type Deps struct {
	Toolkit     media.Toolkit
	Downloader  media.Downloader
	Transcriber transcriber.Transcriber
	Cleaner     *textproc.Cleaner
	Summarizer  summarizer.Summarizer
	// Store is optional; without it Execute and Process skip persistence.
	Store  session.Store
	Logger logger.Logger
}

type implProcessor struct {
	cfg         *config.Config
	toolkit     media.Toolkit
	downloader  media.Downloader
	transcriber transcriber.Transcriber
	cleaner     *textproc.Cleaner
	summarizer  summarizer.Summarizer
	store       session.Store
	logger      logger.Logger
	sem         *semaphore
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps) Processor {
	maxConcurrent := cfg.Performance.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &implProcessor{
		cfg:         cfg,
		toolkit:     deps.Toolkit,
		downloader:  deps.Downloader,
		transcriber: deps.Transcriber,
		cleaner:     deps.Cleaner,
		summarizer:  deps.Summarizer,
		store:       deps.Store,
		logger:      deps.Logger,
		sem:         newSemaphore(maxConcurrent),
	}
}
