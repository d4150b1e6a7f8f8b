package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/textproc"
)

// InvalidQuestion is returned for a blank question or an empty lecture.
const InvalidQuestion = "Please provide a valid question."

const answerPrompt = `Answer the question using ONLY the lecture summary below.
If the summary does not contain the answer, say so briefly.

Lecture Summary:
%s

Question: %s`

func (a *excerptAnswerer) Answer(_ context.Context, question, lectureText string) string {
	question = strings.TrimSpace(question)
	if question == "" || strings.TrimSpace(lectureText) == "" {
		return InvalidQuestion
	}

	return fmt.Sprintf("Question:\n%s\n\nAnswer (based on lecture content):\n%s\n\n(Note: generative model disabled)",
		question, excerpt(lectureText, a.chars))
}

// excerpt always marks the cut, like the lecture view it mirrors.
func excerpt(s string, n int) string {
	e := textproc.Excerpt(s, n)
	if !strings.HasSuffix(e, "...") {
		e += "..."
	}
	return e
}

func (a *generativeAnswerer) Answer(ctx context.Context, question, lectureText string) string {
	question = strings.TrimSpace(question)
	if question == "" || strings.TrimSpace(lectureText) == "" {
		return InvalidQuestion
	}

	answer, err := a.generator.Generate(ctx, fmt.Sprintf(answerPrompt, strings.TrimSpace(lectureText), question))
	if err == nil {
		answer = strings.TrimSpace(answer)
	}
	if err != nil || answer == "" {
		a.logger.Warn(ctx, "Model answer unavailable, using excerpt: %v", err)
		return a.fallback.Answer(ctx, question, lectureText)
	}
	return answer
}
