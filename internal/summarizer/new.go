package summarizer

import (
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

const (
	KindGenerative = "generative"
	KindOffline    = "offline"
)

type implSummarizer struct {
	generator Generator
	logger    logger.Logger
}

// New returns the generative summarizer backed by gen, or the offline one when gen is nil.
func New(gen Generator, log logger.Logger) Summarizer {
	if gen == nil {
		return NewOffline()
	}
	return &implSummarizer{
		generator: gen,
		logger:    log,
	}
}
