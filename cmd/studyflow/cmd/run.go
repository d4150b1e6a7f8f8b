package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/processor"
	"github.com/spf13/cobra"
)

var (
	runExport    []string
	runOutputDir string
	runQuestions []string
)

var runCmd = &cobra.Command{
	Use:   "run <file|url>",
	Short: "Process one lecture and print the study material",
	Long: `Processes a single audio file, video file or video URL and prints the
study material to stdout. Progress is logged to stderr.

Examples:
  studyflow run lecture.mp3
  studyflow run https://www.youtube.com/watch?v=... --export md,pdf
  studyflow run talk.mp4 --ask "What is mitosis?"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSliceVar(&runExport, "export", nil, "export formats to write (md, pdf, docx)")
	runCmd.Flags().StringVar(&runOutputDir, "out", "", "directory for exports (default: paths.output)")
	runCmd.Flags().StringArrayVar(&runQuestions, "ask", nil, "question to answer from the lecture (repeatable)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	formats := make([]export.Format, 0, len(runExport))
	for _, f := range runExport {
		format, err := export.ParseFormat(f)
		if err != nil {
			return err
		}
		formats = append(formats, format)
	}

	req, err := requestFor(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		printError("startup", err)
		return err
	}
	defer a.Close()

	progress := processor.ReporterFunc(func(ev processor.Event) {
		if ev.Total > 0 {
			a.log.Info(ctx, "[%s] %s (%d/%d)", ev.Stage, ev.Message, ev.Current, ev.Total)
			return
		}
		a.log.Info(ctx, "[%s] %s", ev.Stage, ev.Message)
	})

	res, err := a.processor.Run(ctx, req, progress)
	if err != nil {
		printError("processing failed", err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Material)

	dir := runOutputDir
	if dir == "" {
		dir = a.cfg.Paths.Output
	}
	doc := export.Document{Title: req.Name, Material: res.Material}
	for _, f := range formats {
		path := filepath.Join(dir, f.Filename(export.BaseName))
		if err := export.WriteFile(path, f, doc); err != nil {
			printError("export "+string(f), err)
			return err
		}
		a.log.Info(ctx, "Exported %s", path)
	}

	for _, q := range runQuestions {
		fmt.Fprintf(out, "\n%s\n", a.answerer.Answer(ctx, q, res.Summary))
	}
	return nil
}

// requestFor classifies a command line argument as a URL or a local media file.
func requestFor(arg string) (processor.Request, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		if err := media.ValidateURL(arg); err != nil {
			return processor.Request{}, err
		}
		return processor.Request{Name: arg, Source: media.KindURL, URL: arg}, nil
	}

	kind, ok := media.KindFromExt(arg)
	if !ok {
		return processor.Request{}, fmt.Errorf("%w: %s", media.ErrUnsupported, arg)
	}
	if _, err := os.Stat(arg); err != nil {
		return processor.Request{}, err
	}
	return processor.Request{Name: filepath.Base(arg), Source: kind, Path: arg}, nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
