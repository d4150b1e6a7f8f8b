package qa

import (
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/summarizer"
)

// DefaultExcerptChars is how much lecture text the excerpt answer echoes.
const DefaultExcerptChars = 600

type excerptAnswerer struct {
	chars int
}

type generativeAnswerer struct {
	generator summarizer.Generator
	fallback  Answerer
	logger    logger.Logger
}

// NewExcerpt returns the model-free answerer.
func NewExcerpt(chars int) Answerer {
	if chars <= 0 {
		chars = DefaultExcerptChars
	}
	return &excerptAnswerer{chars: chars}
}

// New returns a model-backed answerer that falls back to the excerpt answer,
// or the excerpt answerer alone when gen is nil.
func New(gen summarizer.Generator, excerptChars int, log logger.Logger) Answerer {
	fallback := NewExcerpt(excerptChars)
	if gen == nil {
		return fallback
	}
	return &generativeAnswerer{
		generator: gen,
		fallback:  fallback,
		logger:    log,
	}
}
