package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

type fakeExecutor struct {
	calls     [][]string
	available bool
	run       func(name string, args []string) error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run != nil {
		return "", f.run(name, args)
	}
	return "", nil
}

func (f *fakeExecutor) Available(ctx context.Context, name string, probeArgs ...string) bool {
	return f.available
}

func lastArg(args []string) string {
	return args[len(args)-1]
}

func TestKindFromExt(t *testing.T) {
	tests := []struct {
		name string
		want Kind
		ok   bool
	}{
		{"lecture.mp3", KindAudio, true},
		{"lecture.WAV", KindAudio, true},
		{"talk.mp4", KindVideo, true},
		{"talk.mkv", KindVideo, true},
		{"notes.txt", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := KindFromExt(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KindFromExt(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAdmit(t *testing.T) {
	const limit = 20 * 1024 * 1024
	if err := Admit(limit, limit); err != nil {
		t.Errorf("Admit at limit: %v", err)
	}
	if err := Admit(limit+1, limit); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Admit over limit = %v, want ErrTooLarge", err)
	}
	if err := Admit(1<<40, 0); err != nil {
		t.Errorf("Admit without limit: %v", err)
	}
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()

	f, err := SaveUpload(strings.NewReader("abcdef"), dir, "lecture.mp3", 10)
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if f.Kind != KindAudio || f.Size != 6 {
		t.Errorf("got %+v", f)
	}
	data, _ := os.ReadFile(f.Path)
	if string(data) != "abcdef" {
		t.Errorf("content = %q", data)
	}

	_, err = SaveUpload(bytes.NewReader(make([]byte, 11)), dir, "big.mp4", 10)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("oversize upload err = %v, want ErrTooLarge", err)
	}

	_, err = SaveUpload(strings.NewReader("x"), dir, "slides.pdf", 10)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("unsupported upload err = %v, want ErrUnsupported", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the accepted upload on disk, got %d entries", len(entries))
	}
}

func TestFFmpegNormalizer(t *testing.T) {
	work := t.TempDir()
	exec := &fakeExecutor{run: func(name string, args []string) error {
		return os.WriteFile(lastArg(args), []byte("wav"), 0644)
	}}
	n := Full(ToolConfig{FFmpegPath: "ffmpeg", Filters: "loudnorm", SegmentSeconds: 30}, exec, logger.Nop()).Normalizer

	out, err := n.Normalize(context.Background(), "in.mp4", work)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out != filepath.Join(work, "normalized.wav") {
		t.Errorf("out = %s", out)
	}
	cmd := strings.Join(exec.calls[0], " ")
	for _, want := range []string{"-vn", "-ac 1", "-ar 16000", "-af loudnorm"} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command %q missing %q", cmd, want)
		}
	}
}

func TestFFmpegNormalizerFailureRemovesOutput(t *testing.T) {
	work := t.TempDir()
	exec := &fakeExecutor{run: func(name string, args []string) error {
		os.WriteFile(lastArg(args), []byte("partial"), 0644)
		return errors.New("exit status 1")
	}}
	n := Full(ToolConfig{FFmpegPath: "ffmpeg"}, exec, logger.Nop()).Normalizer

	if _, err := n.Normalize(context.Background(), "in.mp4", work); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(work, "normalized.wav")); !os.IsNotExist(err) {
		t.Error("partial output left behind")
	}
}

func TestFFmpegSegmenter(t *testing.T) {
	work := t.TempDir()
	exec := &fakeExecutor{run: func(name string, args []string) error {
		dir := filepath.Dir(lastArg(args))
		// written out of order on purpose
		for _, n := range []string{"segment_002.wav", "segment_000.wav", "segment_001.wav", "other.txt"} {
			if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
				return err
			}
		}
		return nil
	}}
	s := Full(ToolConfig{FFmpegPath: "ffmpeg", SegmentSeconds: 30}, exec, logger.Nop()).Segmenter

	set, err := s.Split(context.Background(), "normalized.wav", work)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(set.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(set.Segments))
	}
	for i, seg := range set.Segments {
		if seg.Index != i || !seg.Owned {
			t.Errorf("segment %d = %+v", i, seg)
		}
		if seg.Start != time.Duration(i)*30*time.Second {
			t.Errorf("segment %d start = %s", i, seg.Start)
		}
		if !strings.HasSuffix(seg.Path, "segment_00"+string(rune('0'+i))+".wav") {
			t.Errorf("segment %d path = %s", i, seg.Path)
		}
	}
	if !strings.Contains(strings.Join(exec.calls[0], " "), "-segment_time 30") {
		t.Errorf("unexpected command %v", exec.calls[0])
	}

	if err := set.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(set.Dir); !os.IsNotExist(err) {
		t.Error("segment dir not removed")
	}
}

func TestFFmpegSegmenterFailureCleansUp(t *testing.T) {
	tests := []struct {
		name string
		run  func(name string, args []string) error
	}{
		{"ffmpeg error", func(name string, args []string) error {
			os.WriteFile(filepath.Join(filepath.Dir(lastArg(args)), "segment_000.wav"), []byte("x"), 0644)
			return errors.New("exit status 1")
		}},
		{"no output", func(name string, args []string) error { return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := t.TempDir()
			s := Full(ToolConfig{FFmpegPath: "ffmpeg"}, &fakeExecutor{run: tt.run}, logger.Nop()).Segmenter
			if _, err := s.Split(context.Background(), "a.wav", work); err == nil {
				t.Fatal("expected error")
			}
			entries, _ := os.ReadDir(work)
			if len(entries) != 0 {
				t.Errorf("work dir not empty: %d entries", len(entries))
			}
		})
	}
}

func TestDetect(t *testing.T) {
	ctx := context.Background()
	cfg := ToolConfig{FFmpegPath: "ffmpeg", SegmentSeconds: 30}

	if tk := Detect(ctx, cfg, &fakeExecutor{available: true}, logger.Nop()); tk.Mode != ModeFull {
		t.Errorf("mode = %s, want full", tk.Mode)
	}

	tk := Detect(ctx, cfg, &fakeExecutor{available: false}, logger.Nop())
	if tk.Mode != ModeDirect {
		t.Fatalf("mode = %s, want direct", tk.Mode)
	}
	out, err := tk.Normalizer.Normalize(ctx, "lecture.mp3", t.TempDir())
	if err != nil || out != "lecture.mp3" {
		t.Errorf("passthrough = (%s, %v)", out, err)
	}
	set, err := tk.Segmenter.Split(ctx, "lecture.mp3", t.TempDir())
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(set.Segments) != 1 || set.Segments[0].Owned || set.Segments[0].Path != "lecture.mp3" {
		t.Errorf("whole-file set = %+v", set)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=abc", false},
		{"http://example.com/v.mp4", false},
		{"ftp://example.com/v.mp4", true},
		{"youtube.com/watch?v=abc", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsupported) {
			t.Errorf("ValidateURL(%q) error not ErrUnsupported: %v", tt.url, err)
		}
	}
}

func TestDownload(t *testing.T) {
	work := t.TempDir()
	exec := &fakeExecutor{run: func(name string, args []string) error {
		os.WriteFile(filepath.Join(work, "source.webm.part"), []byte("x"), 0644)
		return os.WriteFile(filepath.Join(work, "source.webm"), []byte("audio"), 0644)
	}}
	d := NewDownloader("yt-dlp", "bestaudio/best", exec, logger.Nop())

	f, err := d.Download(context.Background(), "https://youtu.be/abc", work)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if f.Path != filepath.Join(work, "source.webm") || f.Kind != KindURL || f.Size != 5 {
		t.Errorf("got %+v", f)
	}
	if exec.calls[0][0] != "yt-dlp" || !strings.Contains(strings.Join(exec.calls[0], " "), "--no-playlist") {
		t.Errorf("unexpected command %v", exec.calls[0])
	}

	if _, err := d.Download(context.Background(), "not a url", work); !errors.Is(err, ErrUnsupported) {
		t.Errorf("bad url err = %v", err)
	}
}
