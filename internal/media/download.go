package media

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

type ytdlpDownloader struct {
	binary   string
	format   string
	executor executor.Executor
	logger   logger.Logger
}

// NewDownloader returns a yt-dlp backed Downloader.
func NewDownloader(binary, format string, exec executor.Executor, log logger.Logger) Downloader {
	return &ytdlpDownloader{
		binary:   binary,
		format:   format,
		executor: exec,
		logger:   log,
	}
}

// Download fetches the best audio stream of rawURL into workDir.
func (d *ytdlpDownloader) Download(ctx context.Context, rawURL, workDir string) (File, error) {
	if err := ValidateURL(rawURL); err != nil {
		return File{}, err
	}

	d.logger.Info(ctx, "Downloading audio: %s", rawURL)

	args := []string{
		"-f", d.format,
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"-o", filepath.Join(workDir, "source.%(ext)s"),
		rawURL,
	}
	if _, err := d.executor.Execute(ctx, d.binary, args...); err != nil {
		return File{}, fmt.Errorf("yt-dlp download: %w", err)
	}

	path, err := findDownload(workDir)
	if err != nil {
		return File{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat download: %w", err)
	}

	d.logger.Info(ctx, "Downloaded %s (%.1f MB)", filepath.Base(path), float64(info.Size())/(1024*1024))
	return File{Path: path, Kind: KindURL, Size: info.Size()}, nil
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid URL %q", ErrUnsupported, rawURL)
	}
	return nil
}

func findDownload(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "source.*"))
	if err != nil {
		return "", fmt.Errorf("find download: %w", err)
	}
	for _, m := range matches {
		if !strings.HasSuffix(m, ".part") && !strings.HasSuffix(m, ".ytdl") {
			return m, nil
		}
	}
	return "", fmt.Errorf("yt-dlp download: no output file in %s", dir)
}
