package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

// CLIConfig locates the whisper.cpp binary and model.
type CLIConfig struct {
	BinaryPath string
	ModelPath  string
	Threads    int
}

type cliRecognizer struct {
	cfg      CLIConfig
	executor executor.Executor
}

// NewCLI returns a Recognizer backed by the whisper.cpp command line tool.
func NewCLI(cfg CLIConfig, exec executor.Executor) Recognizer {
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	return &cliRecognizer{cfg: cfg, executor: exec}
}

func (r *cliRecognizer) Name() string { return "whisper.cpp" }

// Recognize runs whisper.cpp on one file and reads back its .txt output.
// The output goes to a private scratch dir, never next to the audio, which
// may be the user's own file.
func (r *cliRecognizer) Recognize(ctx context.Context, req Request) (Result, error) {
	scratch, err := os.MkdirTemp(req.WorkDir, "whisper-*")
	if err != nil {
		return Result{}, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	base := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	outputPrefix := filepath.Join(scratch, base)
	txtPath := outputPrefix + ".txt"

	// -tp: sampling temperature, 0 keeps decoding deterministic
	// -otxt / -of: plain text output at <prefix>.txt
	// -np: no progress noise on stderr
	args := []string{
		"-m", r.cfg.ModelPath,
		"-f", req.AudioPath,
		"-l", req.Language,
		"-t", strconv.Itoa(r.cfg.Threads),
		"-tp", strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		"-otxt",
		"-of", outputPrefix,
		"-np",
	}
	if req.Prompt != "" {
		args = append(args, "--prompt", req.Prompt)
	}

	if _, err := r.executor.Execute(ctx, r.cfg.BinaryPath, args...); err != nil {
		return Result{}, fmt.Errorf("whisper transcribe: %w", err)
	}

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper output: %w", err)
	}
	return Result{Text: joinLines(string(data))}, nil
}

// joinLines flattens whisper's one-line-per-segment text output.
func joinLines(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
