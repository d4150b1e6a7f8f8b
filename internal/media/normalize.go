package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

type ffmpegNormalizer struct {
	binary   string
	filters  string
	executor executor.Executor
	logger   logger.Logger
}

// Normalize converts src to 16kHz mono 16-bit WAV through the filter chain.
// A failed run leaves no partial output behind.
func (n *ffmpegNormalizer) Normalize(ctx context.Context, src, workDir string) (string, error) {
	out := filepath.Join(workDir, "normalized.wav")

	n.logger.Info(ctx, "Normalizing audio: %s", filepath.Base(src))

	// -vn: drop video
	// -ac 1 / -ar 16000 / s16: what whisper is trained on
	// -af: speech band-pass, FFT denoise, EBU R128 loudness
	args := []string{
		"-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-sample_fmt", "s16",
		"-c:a", "pcm_s16le",
		"-af", n.filters,
		out,
	}

	if _, err := n.executor.Execute(ctx, n.binary, args...); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("ffmpeg normalize: %w", err)
	}

	n.logger.Debug(ctx, "Audio normalized: %s", out)
	return out, nil
}

// passthroughNormalizer is used when ffmpeg is missing; the recognizer gets the raw file.
type passthroughNormalizer struct{}

func (passthroughNormalizer) Normalize(_ context.Context, src, _ string) (string, error) {
	return src, nil
}
