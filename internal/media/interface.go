// Package media acquires lecture media and prepares it for speech recognition:
// admission control, URL download, loudness/noise normalization and fixed-length segmentation.
package media

import "context"

// Normalizer re-encodes media into mono 16 kHz 16-bit PCM with the speech filter chain.
type Normalizer interface {
	// Normalize writes the normalized audio under workDir and returns its path.
	Normalize(ctx context.Context, src, workDir string) (string, error)
}

// Segmenter splits normalized audio into consecutive fixed-duration segments.
type Segmenter interface {
	// Split returns the segments ordered by start time. The caller releases the set.
	Split(ctx context.Context, audioPath, workDir string) (*SegmentSet, error)
}

// Downloader fetches an audio-bearing file for a remote video URL.
type Downloader interface {
	Download(ctx context.Context, rawURL, workDir string) (File, error)
}
