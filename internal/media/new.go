package media

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

// ToolConfig locates ffmpeg and tunes normalization and segmentation.
type ToolConfig struct {
	FFmpegPath     string
	Filters        string
	SegmentSeconds int
}

// Toolkit is the normalizer/segmenter pair matching the installed tooling.
// It is chosen once at startup and never re-probed.
type Toolkit struct {
	Mode       Mode
	Normalizer Normalizer
	Segmenter  Segmenter
}

// Detect probes ffmpeg and returns the full toolkit when it runs,
// otherwise the degraded passthrough toolkit.
func Detect(ctx context.Context, cfg ToolConfig, exec executor.Executor, log logger.Logger) Toolkit {
	if !exec.Available(ctx, cfg.FFmpegPath, "-version") {
		log.Warn(ctx, "ffmpeg not found (%s): using direct transcription without normalization", cfg.FFmpegPath)
		return Degraded()
	}
	log.Info(ctx, "ffmpeg found: normalizing and segmenting every %ds", cfg.SegmentSeconds)
	return Full(cfg, exec, log)
}

// Full returns the ffmpeg-backed toolkit.
func Full(cfg ToolConfig, exec executor.Executor, log logger.Logger) Toolkit {
	seconds := cfg.SegmentSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return Toolkit{
		Mode: ModeFull,
		Normalizer: &ffmpegNormalizer{
			binary:   cfg.FFmpegPath,
			filters:  cfg.Filters,
			executor: exec,
			logger:   log,
		},
		Segmenter: &ffmpegSegmenter{
			binary:   cfg.FFmpegPath,
			duration: time.Duration(seconds) * time.Second,
			executor: exec,
			logger:   log,
		},
	}
}

// Degraded returns the toolkit used without ffmpeg.
func Degraded() Toolkit {
	return Toolkit{
		Mode:       ModeDirect,
		Normalizer: passthroughNormalizer{},
		Segmenter:  wholeFileSegmenter{},
	}
}
