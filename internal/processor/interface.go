package processor

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/studyguide"
	"github.com/nguyentantai21042004/study-flow/internal/transcriber"
)

// ErrNoSpeech is returned when transcription produced no text at all.
var ErrNoSpeech = errors.New("no speech recognized in the media")

// Processor turns lecture media into study material.
type Processor interface {
	// Run executes the pipeline for one lecture. Everything it writes to disk
	// is gone when it returns.
	Run(ctx context.Context, req Request, rep Reporter) (*Result, error)
	// Execute runs the pipeline for a stored session, recording its outcome.
	Execute(ctx context.Context, sessionID string, req Request, rep Reporter) (*Result, error)
	// Process handles a file dropped into the input folder: it writes the
	// exports to the output folder and archives the source.
	Process(ctx context.Context, path string) error
}

// Request names the media to process. Path is used for audio and video,
// URL for remote videos.
type Request struct {
	Name   string
	Source media.Kind
	Path   string
	URL    string
}

// Result is the outcome of a successful run.
type Result struct {
	Transcript string
	// Timeline holds time-aligned transcript spans when the recognizer reports them.
	Timeline []transcriber.Span
	Cleaned  string
	Chunks   int
	// Summary is the concatenation of the mini-summaries.
	Summary  string
	Material string
	Guide    studyguide.Guide
	Mode     media.Mode
	Duration time.Duration
}

// Stage names a pipeline step in progress events.
type Stage string

const (
	StageQueued       Stage = "queued"
	StageAcquiring    Stage = "acquiring"
	StageNormalizing  Stage = "normalizing"
	StageTranscribing Stage = "transcribing"
	StageCleaning     Stage = "cleaning"
	StageSummarizing  Stage = "summarizing"
	StageSynthesizing Stage = "synthesizing"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
)

// Event is a progress notification.
type Event struct {
	Stage   Stage     `json:"stage"`
	Message string    `json:"message"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	Time    time.Time `json:"time"`
}

// Final reports whether no further events follow.
func (e Event) Final() bool {
	return e.Stage == StageCompleted || e.Stage == StageFailed
}

// Reporter receives progress events. It must not block.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ev Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }
