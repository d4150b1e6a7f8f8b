package processor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/studyguide"
	"github.com/nguyentantai21042004/study-flow/internal/summarizer"
	"github.com/nguyentantai21042004/study-flow/internal/textproc"
)

// Run orchestrates the entire lecture pipeline:
// acquire -> normalize -> segment/transcribe -> clean -> chunk -> summarize.
func (p *implProcessor) Run(ctx context.Context, req Request, rep Reporter) (*Result, error) {
	if rep == nil {
		rep = ReporterFunc(func(Event) {})
	}
	emit := func(stage Stage, current, total int, format string, args ...any) {
		rep.Report(Event{Stage: stage, Message: fmt.Sprintf(format, args...), Current: current, Total: total, Time: time.Now()})
	}

	if !p.sem.tryAcquire() {
		emit(StageQueued, 0, 0, "Waiting for a free slot (%d sessions running)", p.sem.running())
		p.logger.Info(ctx, "All %d session slots busy, queued: %s", cap(p.sem.ch), req.Name)
		if err := p.sem.acquire(ctx); err != nil {
			return nil, err
		}
	}
	defer p.sem.release()

	startTime := time.Now()
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting lecture processing: %s (%s, %s mode)", req.Name, req.Source, p.toolkit.Mode)
	p.logger.Info(ctx, "========================================")

	workDir, err := os.MkdirTemp(p.cfg.Paths.Temp, "session-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer p.removeWorkDir(ctx, workDir)

	// Step 1: Acquire
	emit(StageAcquiring, 0, 0, "Acquiring media")
	src, err := p.acquire(ctx, req, workDir)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	// Step 2: Normalize
	emit(StageNormalizing, 0, 0, "Normalizing audio")
	audioPath, err := p.toolkit.Normalizer.Normalize(ctx, src.Path, workDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn(ctx, "Normalization failed, using original media: %v", err)
		audioPath = src.Path
	}

	// Step 3: Transcribe
	emit(StageTranscribing, 0, 0, "Transcribing")
	transcript, err := p.transcriber.Transcribe(ctx, audioPath, workDir)
	if audioPath != src.Path {
		p.cleanupTempFile(ctx, audioPath)
	}
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return nil, ErrNoSpeech
	}

	// Step 4: Clean and chunk
	emit(StageCleaning, 0, 0, "Cleaning transcript")
	cleaned := p.cleaner.Clean(transcript.Text)
	chunks := textproc.Chunk(cleaned, p.cfg.Text.ChunkWords)
	p.logger.Info(ctx, "Transcript: %d words in %d chunk(s)", len(strings.Fields(cleaned)), len(chunks))

	// Step 5: Stage 1 summaries
	combined := summarizer.Condense(ctx, p.summarizer, chunks, func(i, n int) {
		emit(StageSummarizing, i, n, "Summarizing chunk %d/%d", i, n)
		p.logger.Info(ctx, "Summarizing chunk %d/%d", i, n)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 6: Study material
	emit(StageSynthesizing, 0, 0, "Generating study material")
	material := p.summarizer.StudyMaterial(ctx, combined)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	guide := studyguide.Parse(material)
	if missing := guide.Missing(); len(missing) > 0 {
		p.logger.Warn(ctx, "Study material is missing section(s): %v", missing)
	}

	duration := time.Since(startTime)
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Processing time: %s", duration)
	p.logger.Info(ctx, "========================================")

	return &Result{
		Transcript: transcript.Text,
		Timeline:   transcript.Spans,
		Cleaned:    cleaned,
		Chunks:     len(chunks),
		Summary:    combined,
		Material:   material,
		Guide:      guide,
		Mode:       p.toolkit.Mode,
		Duration:   duration,
	}, nil
}

// acquire resolves the request to media on local disk and applies admission control.
func (p *implProcessor) acquire(ctx context.Context, req Request, workDir string) (media.File, error) {
	limit := p.cfg.Server.MaxUploadBytes()

	if req.Source == media.KindURL {
		f, err := p.downloader.Download(ctx, req.URL, workDir)
		if err != nil {
			return media.File{}, err
		}
		if err := media.Admit(f.Size, limit); err != nil {
			return media.File{}, err
		}
		return f, nil
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return media.File{}, fmt.Errorf("stat media: %w", err)
	}
	if err := media.Admit(info.Size(), limit); err != nil {
		return media.File{}, err
	}
	return media.File{Path: req.Path, Kind: req.Source, Size: info.Size()}, nil
}

// Execute wraps Run with the session lifecycle and terminal progress events.
func (p *implProcessor) Execute(ctx context.Context, sessionID string, req Request, rep Reporter) (*Result, error) {
	ctx = logger.WithSession(ctx, sessionID)
	if rep == nil {
		rep = ReporterFunc(func(Event) {})
	}

	if p.store != nil {
		if err := p.store.MarkProcessing(ctx, sessionID); err != nil {
			p.logger.Warn(ctx, "Failed to mark session processing: %v", err)
		}
	}

	res, err := p.Run(ctx, req, rep)
	// the outcome is recorded even if the caller's context is gone
	storeCtx := context.WithoutCancel(ctx)

	if err != nil {
		p.logger.Error(ctx, "Processing failed: %v", err)
		if p.store != nil {
			if ferr := p.store.Fail(storeCtx, sessionID, err.Error()); ferr != nil {
				p.logger.Error(ctx, "Failed to record session failure: %v", ferr)
			}
		}
		rep.Report(Event{Stage: StageFailed, Message: err.Error(), Time: time.Now()})
		return nil, err
	}

	if p.store != nil {
		out := sessionOutput(res)
		if cerr := p.store.Complete(storeCtx, sessionID, out); cerr != nil {
			p.logger.Error(ctx, "Failed to record session result: %v", cerr)
		}
	}
	rep.Report(Event{Stage: StageCompleted, Message: "Study material ready", Time: time.Now()})
	return res, nil
}

func (p *implProcessor) removeWorkDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to remove work dir %s: %v", dir, err)
	}
}
