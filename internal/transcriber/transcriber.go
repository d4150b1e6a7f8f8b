package transcriber

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/media"
)

func (t *implTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) (Transcript, error) {
	if t.toolkit.Mode == media.ModeDirect {
		return t.transcribeDirect(ctx, audioPath, workDir)
	}

	set, err := t.toolkit.Segmenter.Split(ctx, audioPath, workDir)
	if err != nil {
		if ctx.Err() != nil {
			return Transcript{}, ctx.Err()
		}
		t.logger.Warn(ctx, "Segmentation failed, transcribing whole file: %v", err)
		set = media.WholeFile(audioPath)
	}
	defer func() {
		if err := set.Release(); err != nil {
			t.logger.Warn(ctx, "Failed to release segments: %v", err)
		}
	}()

	texts := make([]string, 0, len(set.Segments))
	var spans []Span
	prompt := ""
	for _, seg := range set.Segments {
		if err := ctx.Err(); err != nil {
			return Transcript{}, err
		}
		res := t.transcribeSegment(ctx, seg, len(set.Segments), prompt, workDir)
		if res.Text == "" {
			continue
		}
		texts = append(texts, res.Text)
		spans = append(spans, shift(res.Spans, seg.Start)...)
		prompt = tail(res.Text, promptWords)
	}

	if err := ctx.Err(); err != nil {
		return Transcript{}, err
	}
	t.logger.Info(ctx, "Transcribed %d/%d segment(s)", len(texts), len(set.Segments))
	return Transcript{Text: strings.Join(texts, " "), Spans: spans}, nil
}

// transcribeSegment returns the trimmed result of one segment, empty when the
// segment is too small or recognition fails. Owned segment files are removed
// whatever the outcome.
func (t *implTranscriber) transcribeSegment(ctx context.Context, seg media.Segment, total int, prompt, workDir string) Result {
	if seg.Owned {
		defer t.removeSegment(ctx, seg.Path)
	}

	info, err := os.Stat(seg.Path)
	if err != nil {
		t.logger.Warn(ctx, "Segment %d/%d unreadable: %v", seg.Index+1, total, err)
		return Result{}
	}
	if info.Size() < t.opts.MinSegmentBytes {
		t.logger.Debug(ctx, "Segment %d/%d skipped (%d bytes)", seg.Index+1, total, info.Size())
		return Result{}
	}

	t.logger.Debug(ctx, "Transcribing segment %d/%d at %s", seg.Index+1, total, seg.Start)
	res, err := t.recognizer.Recognize(ctx, Request{
		AudioPath: seg.Path,
		WorkDir:   workDir,
		Language:  t.opts.Language,
		Prompt:    prompt,
	})
	if err != nil {
		t.logger.Warn(ctx, "Segment %d/%d failed (%s): %v", seg.Index+1, total, t.recognizer.Name(), err)
		return Result{}
	}
	res.Text = strings.TrimSpace(res.Text)
	return res
}

func (t *implTranscriber) transcribeDirect(ctx context.Context, audioPath, workDir string) (Transcript, error) {
	t.logger.Info(ctx, "Transcribing whole file with %s", t.recognizer.Name())

	res, err := t.recognizer.Recognize(ctx, Request{
		AudioPath: audioPath,
		WorkDir:   workDir,
		Language:  t.opts.Language,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Transcript{}, ctx.Err()
		}
		t.logger.Warn(ctx, "Direct transcription failed: %v", err)
		return Transcript{}, nil
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return Transcript{}, nil
	}
	return Transcript{Text: text, Spans: res.Spans}, nil
}

// shift moves segment-relative spans to file time.
func shift(spans []Span, offset time.Duration) []Span {
	ms := uint64(offset / time.Millisecond)
	out := make([]Span, 0, len(spans))
	for _, sp := range spans {
		sp.StartMs += ms
		sp.EndMs += ms
		out = append(out, sp)
	}
	return out
}

func (t *implTranscriber) removeSegment(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		t.logger.Warn(ctx, "Failed to remove segment %s: %v", path, err)
	}
}

func tail(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
