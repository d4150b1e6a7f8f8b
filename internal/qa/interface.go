// Package qa answers questions about a lecture from its combined summary.
package qa

import "context"

// Answerer answers a question using only the supplied lecture text.
type Answerer interface {
	// Answer never fails; a blank question or context yields InvalidQuestion.
	Answer(ctx context.Context, question, lectureText string) string
}
