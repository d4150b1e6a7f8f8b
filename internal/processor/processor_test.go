package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/session"
	"github.com/nguyentantai21042004/study-flow/internal/summarizer"
	"github.com/nguyentantai21042004/study-flow/internal/textproc"
	"github.com/nguyentantai21042004/study-flow/internal/transcriber"
)

type fakeNormalizer struct {
	err error
}

func (n *fakeNormalizer) Normalize(ctx context.Context, src, workDir string) (string, error) {
	out := filepath.Join(workDir, "normalized.wav")
	if err := os.WriteFile(out, []byte("wav"), 0644); err != nil {
		return "", err
	}
	if n.err != nil {
		os.Remove(out)
		return "", n.err
	}
	return out, nil
}

// fakeTranscriber leaves a stray file in the work dir to prove the run removes it.
type fakeTranscriber struct {
	text  string
	spans []transcriber.Span
	err   error
	audio string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) (transcriber.Transcript, error) {
	f.audio = audioPath
	os.WriteFile(filepath.Join(workDir, "segment_000.wav"), []byte("x"), 0644)
	return transcriber.Transcript{Text: f.text, Spans: f.spans}, f.err
}

type fakeDownloader struct {
	size int
}

func (d *fakeDownloader) Download(ctx context.Context, rawURL, workDir string) (media.File, error) {
	p := filepath.Join(workDir, "source.webm")
	if err := os.WriteFile(p, make([]byte, d.size), 0644); err != nil {
		return media.File{}, err
	}
	return media.File{Path: p, Kind: media.KindURL, Size: int64(d.size)}, nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "academic lecture analyzer") {
		return "### Structured Study Notes\nNotes.\n\n### Key Concepts\n- cells\n\n### Flashcards\nQ: a\nA: b\n\n### MCQs\n1. q\nAnswer: A\n\n### Beginner-Friendly Explanation\nEasy.", nil
	}
	return "Cells are the basic unit of life. They divide by mitosis, grow by taking in nutrients and respond to signals from their environment.", nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) stages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Stage
	for _, ev := range r.events {
		out = append(out, ev.Stage)
	}
	return out
}

type fixture struct {
	cfg  *config.Config
	tr   *fakeTranscriber
	norm *fakeNormalizer
	dl   *fakeDownloader
	deps Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{ModelPath: "model.bin", BinaryPath: "whisper-cli"},
		Server:  config.ServerConfig{MaxUploadMB: 1},
		Paths: config.PathsConfig{
			Input:    filepath.Join(root, "input"),
			Output:   filepath.Join(root, "output"),
			Archived: filepath.Join(root, "archived"),
			Temp:     filepath.Join(root, "temp"),
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{cfg.Paths.Input, cfg.Paths.Temp} {
		os.MkdirAll(d, 0755)
	}

	f := &fixture{
		cfg:  cfg,
		tr:   &fakeTranscriber{text: strings.Repeat("uh the cell is the basic unit of life ", 30)},
		norm: &fakeNormalizer{},
		dl:   &fakeDownloader{size: 10},
	}
	f.deps = Deps{
		Toolkit:     media.Toolkit{Mode: media.ModeFull, Normalizer: f.norm},
		Downloader:  f.dl,
		Transcriber: f.tr,
		Cleaner:     textproc.NewCleaner(cfg.Text.Fillers),
		Summarizer:  summarizer.New(fakeGenerator{}, logger.Nop()),
		Logger:      logger.Nop(),
	}
	return f
}

func (f *fixture) lecture(t *testing.T, name string, size int) string {
	t.Helper()
	p := filepath.Join(f.cfg.Paths.Input, name)
	if err := os.WriteFile(p, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("%s not empty: %v", dir, names)
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	p := New(f.cfg, f.deps)
	rec := &recorder{}

	res, err := p.Run(context.Background(), Request{Name: "bio.mp3", Source: media.KindAudio, Path: f.lecture(t, "bio.mp3", 100)}, rec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if strings.Contains(res.Cleaned, "uh ") {
		t.Error("transcript not cleaned")
	}
	if res.Chunks != 1 || res.Summary == "" {
		t.Errorf("chunks = %d, summary = %q", res.Chunks, res.Summary)
	}
	if len(res.Guide.Missing()) != 0 {
		t.Errorf("missing sections: %v", res.Guide.Missing())
	}
	if filepath.Base(f.tr.audio) != "normalized.wav" {
		t.Errorf("transcriber got %s, want normalized audio", f.tr.audio)
	}

	stages := rec.stages()
	for _, want := range []Stage{StageAcquiring, StageNormalizing, StageTranscribing, StageSummarizing, StageSynthesizing} {
		found := false
		for _, s := range stages {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("no %s event in %v", want, stages)
		}
	}

	assertEmptyDir(t, f.cfg.Paths.Temp)
}

func TestRunNormalizerFailureUsesOriginal(t *testing.T) {
	f := newFixture(t)
	f.norm.err = errors.New("ffmpeg exploded")
	src := f.lecture(t, "talk.mp4", 100)

	if _, err := New(f.cfg, f.deps).Run(context.Background(), Request{Name: "talk.mp4", Source: media.KindVideo, Path: src}, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.tr.audio != src {
		t.Errorf("transcriber got %s, want original %s", f.tr.audio, src)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("caller-owned source must survive the run")
	}
	assertEmptyDir(t, f.cfg.Paths.Temp)
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture) Request
		wantErr error
	}{
		{
			name: "no speech",
			setup: func(f *fixture) Request {
				f.tr.text = "   "
				return Request{Name: "a.mp3", Source: media.KindAudio}
			},
			wantErr: ErrNoSpeech,
		},
		{
			name: "too large upload",
			setup: func(f *fixture) Request {
				return Request{Name: "big.mp3", Source: media.KindAudio, Path: "big"}
			},
			wantErr: media.ErrTooLarge,
		},
		{
			name: "too large download",
			setup: func(f *fixture) Request {
				f.dl.size = 2 * 1024 * 1024
				return Request{Name: "yt", Source: media.KindURL, URL: "https://youtu.be/x"}
			},
			wantErr: media.ErrTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.setup(f)
			switch req.Path {
			case "":
				if req.Source != media.KindURL {
					req.Path = f.lecture(t, req.Name, 100)
				}
			case "big":
				req.Path = f.lecture(t, req.Name, 2*1024*1024)
			}

			_, err := New(f.cfg, f.deps).Run(context.Background(), req, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			assertEmptyDir(t, f.cfg.Paths.Temp)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f.cfg, f.deps).Run(ctx, Request{Name: "a.mp3", Source: media.KindAudio, Path: f.lecture(t, "a.mp3", 10)}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func openStore(t *testing.T) session.Store {
	t.Helper()
	store, err := session.OpenSQLite(filepath.Join(t.TempDir(), "studyflow.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExecuteRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.deps.Store = openStore(t)
	p := New(f.cfg, f.deps)

	f.tr.spans = []transcriber.Span{{StartMs: 0, EndMs: 1200, Text: "the cell"}}
	ok, _ := f.deps.Store.Create(ctx, session.Session{Name: "ok.mp3", Source: "audio"})
	rec := &recorder{}
	if _, err := p.Execute(ctx, ok.ID, Request{Name: "ok.mp3", Source: media.KindAudio, Path: f.lecture(t, "ok.mp3", 10)}, rec); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, _ := f.deps.Store.Get(ctx, ok.ID)
	if got.Status != session.StatusCompleted || got.Material == "" || got.Summary == "" {
		t.Errorf("session = %+v", got)
	}
	if len(got.Timeline) != 1 || got.Timeline[0].EndMs != 1200 || got.Timeline[0].Text != "the cell" {
		t.Errorf("timeline = %+v", got.Timeline)
	}
	stages := rec.stages()
	if stages[len(stages)-1] != StageCompleted {
		t.Errorf("last stage = %s", stages[len(stages)-1])
	}

	f.tr.text = ""
	bad, _ := f.deps.Store.Create(ctx, session.Session{Name: "bad.mp3", Source: "audio"})
	rec = &recorder{}
	if _, err := p.Execute(ctx, bad.ID, Request{Name: "bad.mp3", Source: media.KindAudio, Path: f.lecture(t, "bad.mp3", 10)}, rec); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v", err)
	}
	got, _ = f.deps.Store.Get(ctx, bad.ID)
	if got.Status != session.StatusFailed || got.Error != ErrNoSpeech.Error() {
		t.Errorf("session = %+v", got)
	}
	stages = rec.stages()
	if stages[len(stages)-1] != StageFailed {
		t.Errorf("last stage = %s", stages[len(stages)-1])
	}
}

func TestProcessWritesExportsAndArchives(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = openStore(t)
	src := f.lecture(t, "Week 1.mp4", 10)

	if err := New(f.cfg, f.deps).Process(context.Background(), src); err != nil {
		t.Fatalf("Process: %v", err)
	}

	for _, name := range []string{"Week 1.md", "Week 1.pdf", "Week 1.docx"} {
		if info, err := os.Stat(filepath.Join(f.cfg.Paths.Output, name)); err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty: %v", name, err)
		}
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still in input folder")
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Paths.Archived, "Week 1.mp4")); err != nil {
		t.Errorf("source not archived: %v", err)
	}

	list, _ := f.deps.Store.List(context.Background(), 10)
	if len(list) != 1 || list[0].Status != session.StatusCompleted || list[0].Fingerprint == "" {
		t.Errorf("sessions = %+v", list)
	}
	assertEmptyDir(t, f.cfg.Paths.Temp)
}

func TestProcessRejectsUnsupported(t *testing.T) {
	f := newFixture(t)
	if err := New(f.cfg, f.deps).Process(context.Background(), f.lecture(t, "notes.txt", 1)); !errors.Is(err, media.ErrUnsupported) {
		t.Errorf("err = %v", err)
	}
}

func TestSemaphore(t *testing.T) {
	s := newSemaphore(1)
	if !s.tryAcquire() {
		t.Fatal("tryAcquire on empty semaphore failed")
	}
	if s.tryAcquire() || s.running() != 1 {
		t.Fatal("semaphore over capacity")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire on full semaphore = %v", err)
	}
	s.release()
	if err := s.acquire(context.Background()); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
}
