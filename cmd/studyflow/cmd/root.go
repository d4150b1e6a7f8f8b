package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "studyflow",
	Short: "Turn recorded lectures into study material",
	Long: `studyflow transcribes lecture audio, video or online videos with whisper,
condenses the transcript and produces study notes, key concepts, flashcards,
multiple choice questions and a beginner-friendly explanation.

Commands:
  serve  - HTTP API with live progress over websockets
  watch  - process files dropped into the input folder
  run    - process a single file or URL and print the result`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}
