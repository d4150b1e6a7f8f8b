package summarizer

import (
	"context"
	"fmt"
	"strings"
)

const (
	// minChunkChars and minCombinedChars are measured after trimming.
	minChunkChars    = 80
	minCombinedChars = 100

	// InsufficientContent is returned instead of calling the model on near-empty input.
	InsufficientContent = "Not enough content to generate study material."
)

const miniSummaryPrompt = `Summarize the following lecture section clearly and concisely.
Focus only on key ideas, definitions, and explanations.
Do NOT create flashcards, MCQs, or structured notes.

Lecture Section:
%s`

const studyMaterialPrompt = `You are an academic lecture analyzer.

From the following condensed lecture summary, generate these sections, each introduced by a "###" heading with exactly this title:

### Structured Study Notes
- Organized with headings
- Logical flow
- No repetition

### Key Concepts
A bullet list.

### Flashcards
5 flashcards in Q: / A: format, separated by a blank line.

### MCQs
5 multiple-choice questions, 4 options each (A-D), with the correct answer clearly marked as "Answer: <letter>". Separate questions with a blank line.

### Beginner-Friendly Explanation
A beginner-friendly explanation of the full topic.

Do NOT repeat content.
Ensure coherence across all sections.

Lecture Summary:
%s`

func (s *implSummarizer) Kind() string { return KindGenerative }

func (s *implSummarizer) MiniSummary(ctx context.Context, chunk string) (string, bool) {
	chunk = strings.TrimSpace(chunk)
	if len(chunk) < minChunkChars {
		return "", false
	}

	summary, err := s.generator.Generate(ctx, fmt.Sprintf(miniSummaryPrompt, chunk))
	if err != nil {
		s.logger.Warn(ctx, "Mini summary failed: %v", err)
		return "", false
	}
	summary = strings.TrimSpace(summary)
	return summary, summary != ""
}

func (s *implSummarizer) StudyMaterial(ctx context.Context, combined string) string {
	combined = strings.TrimSpace(combined)
	if len(combined) < minCombinedChars {
		return InsufficientContent
	}

	text, err := s.generator.Generate(ctx, fmt.Sprintf(studyMaterialPrompt, combined))
	if err != nil {
		s.logger.Error(ctx, "Study material generation failed: %v", err)
		return GenerationFailed(err)
	}
	return text
}

// GenerationFailed is the study material stored when the final call fails.
func GenerationFailed(err error) string {
	return fmt.Sprintf("Generation failed: %v", err)
}

// Condense runs the first stage over chunks in order and joins the kept
// mini-summaries with one space. onChunk, when set, is called before each chunk.
func Condense(ctx context.Context, s Summarizer, chunks []string, onChunk func(i, n int)) string {
	kept := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if ctx.Err() != nil {
			break
		}
		if onChunk != nil {
			onChunk(i+1, len(chunks))
		}
		if summary, ok := s.MiniSummary(ctx, c); ok {
			kept = append(kept, summary)
		}
	}
	return strings.Join(kept, " ")
}
