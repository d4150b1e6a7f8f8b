package media

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Kind is how a lecture entered the system.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
	KindURL   Kind = "url"
)

// Mode is the transcription fidelity the installed tooling allows.
type Mode string

const (
	// ModeFull normalizes, segments and transcribes segment by segment.
	ModeFull Mode = "full"
	// ModeDirect hands the untouched file to the recognizer in one call.
	ModeDirect Mode = "direct"
)

// File is media on local disk.
type File struct {
	Path string
	Kind Kind
	Size int64
}

// Segment is a bounded slice of normalized audio.
type Segment struct {
	Path  string
	Index int
	Start time.Duration
	// Owned segments are temporaries created by the segmenter and are deleted
	// right after transcription. The whole-file fallback is never owned.
	Owned bool
}

// SegmentSet groups the segments produced by one Split call.
type SegmentSet struct {
	Dir      string
	Segments []Segment
}

// WholeFile wraps an audio file as a single, non-owned segment.
func WholeFile(path string) *SegmentSet {
	return &SegmentSet{Segments: []Segment{{Path: path}}}
}

// Release removes the segment directory and anything still in it.
func (s *SegmentSet) Release() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove segment dir: %w", err)
	}
	return nil
}

var (
	// ErrTooLarge is returned by admission control.
	ErrTooLarge = errors.New("media exceeds the upload size limit")
	// ErrUnsupported is returned for unknown file types and malformed URLs.
	ErrUnsupported = errors.New("unsupported media")
)
