// Package transcriber turns normalized lecture audio into plain text, one
// segment at a time, through a pluggable speech recognizer.
package transcriber

import "context"

// Transcriber produces the transcript of an audio file.
type Transcriber interface {
	// Transcribe returns the non-empty segment texts joined by one space.
	// Per-segment failures are logged and skipped; only cancellation is returned.
	Transcribe(ctx context.Context, audioPath, workDir string) (Transcript, error)
}

// Recognizer is one call into a speech recognition backend.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, req Request) (Result, error)
}

// Transcript is the recognized text of a whole file. Spans are relative to
// the start of the file and only present when the recognizer reports them.
type Transcript struct {
	Text  string
	Spans []Span
}

// Request holds parameters for a single recognition call.
type Request struct {
	AudioPath string
	// WorkDir receives any scratch files the backend needs; empty means the
	// system temp dir.
	WorkDir     string
	Language    string
	Temperature float64
	// Prompt is the preceding text, used by backends that accept a continuation prompt.
	Prompt string
}

// Result is the recognized text plus time-aligned spans when the backend reports them.
type Result struct {
	Text  string
	Spans []Span
}

// Span is a time-aligned portion of a recognition result, in milliseconds.
type Span struct {
	StartMs uint64 `json:"start_ms"`
	EndMs   uint64 `json:"end_ms"`
	Text    string `json:"text"`
}
