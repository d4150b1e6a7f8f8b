package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

const (
	segmentPrefix  = "segment_"
	segmentSuffix  = ".wav"
	segmentPattern = segmentPrefix + "%03d" + segmentSuffix
)

type ffmpegSegmenter struct {
	binary   string
	duration time.Duration
	executor executor.Executor
	logger   logger.Logger
}

// Split cuts audioPath into fixed-length segments with reset timestamps.
// On failure nothing is left on disk.
func (s *ffmpegSegmenter) Split(ctx context.Context, audioPath, workDir string) (*SegmentSet, error) {
	dir, err := os.MkdirTemp(workDir, "segments-*")
	if err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}
	set := &SegmentSet{Dir: dir}

	args := []string{
		"-y",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(int(s.duration.Seconds())),
		"-reset_timestamps", "1",
		filepath.Join(dir, segmentPattern),
	}

	if _, err := s.executor.Execute(ctx, s.binary, args...); err != nil {
		set.Release()
		return nil, fmt.Errorf("ffmpeg segment: %w", err)
	}

	segments, err := listSegments(dir, s.duration)
	if err != nil {
		set.Release()
		return nil, err
	}
	if len(segments) == 0 {
		set.Release()
		return nil, fmt.Errorf("ffmpeg segment: no segments produced")
	}

	set.Segments = segments
	s.logger.Info(ctx, "Split audio into %d segment(s) of %s", len(segments), s.duration)
	return set, nil
}

// listSegments enumerates segment files; zero-padded names sort in time order.
func listSegments(dir string, duration time.Duration) ([]Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), segmentPrefix) && strings.HasSuffix(e.Name(), segmentSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	segments := make([]Segment, len(names))
	for i, name := range names {
		segments[i] = Segment{
			Path:  filepath.Join(dir, name),
			Index: i,
			Start: time.Duration(i) * duration,
			Owned: true,
		}
	}
	return segments, nil
}

// wholeFileSegmenter is used when ffmpeg is missing.
type wholeFileSegmenter struct{}

func (wholeFileSegmenter) Split(_ context.Context, audioPath, _ string) (*SegmentSet, error) {
	return WholeFile(audioPath), nil
}
