package summarizer

import "context"

// Generator is one prompt-in, text-out call to a generative model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer condenses lecture text in two stages: per-chunk mini-summaries,
// then one structured study guide from their concatenation.
type Summarizer interface {
	// Kind names the implementation ("generative" or "offline").
	Kind() string
	// MiniSummary compresses one chunk. ok is false when the chunk contributes nothing.
	MiniSummary(ctx context.Context, chunk string) (summary string, ok bool)
	// StudyMaterial never fails; problems are reported inside the returned text.
	StudyMaterial(ctx context.Context, combined string) string
}
