package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/textproc"
)

const (
	offlineChunkChars   = 300
	offlineSummaryChars = 600
)

const offlineTemplate = `## Study Notes (auto-generated)

### Structured Study Notes
%s

### Key Concepts
- Core ideas extracted from lecture

### Flashcards
Q: What is the lecture mainly about?
A: Derived from summarized content

### MCQs
1. What best describes the lecture?
A) Overview
B) Explanation
C) Example
D) Conclusion
Answer: B

_(Simple mode: generative model disabled)_
`

type offlineSummarizer struct{}

// NewOffline returns the summarizer used without a model: excerpts and a fixed template.
func NewOffline() Summarizer {
	return offlineSummarizer{}
}

func (offlineSummarizer) Kind() string { return KindOffline }

func (offlineSummarizer) MiniSummary(_ context.Context, chunk string) (string, bool) {
	chunk = strings.TrimSpace(chunk)
	if len(chunk) < minChunkChars {
		return "", false
	}
	return textproc.Excerpt(chunk, offlineChunkChars), true
}

func (offlineSummarizer) StudyMaterial(_ context.Context, combined string) string {
	combined = strings.TrimSpace(combined)
	if len(combined) < minCombinedChars {
		return InsufficientContent
	}
	return fmt.Sprintf(offlineTemplate, textproc.Excerpt(combined, offlineSummaryChars))
}
