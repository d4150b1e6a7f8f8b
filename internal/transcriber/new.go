package transcriber

import (
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
)

const (
	defaultLanguage        = "en"
	defaultMinSegmentBytes = 50 * 1024
	// promptWords bounds the continuation prompt carried into the next segment.
	promptWords = 64
)

// Options tune recognition.
type Options struct {
	Language        string
	MinSegmentBytes int64
}

type implTranscriber struct {
	recognizer Recognizer
	toolkit    media.Toolkit
	opts       Options
	logger     logger.Logger
}

// New creates a Transcriber. The toolkit mode decides, once, whether audio is
// segmented (full) or handed to the recognizer whole (direct).
func New(rec Recognizer, toolkit media.Toolkit, opts Options, log logger.Logger) Transcriber {
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.MinSegmentBytes <= 0 {
		opts.MinSegmentBytes = defaultMinSegmentBytes
	}
	return &implTranscriber{
		recognizer: rec,
		toolkit:    toolkit,
		opts:       opts,
		logger:     log,
	}
}
