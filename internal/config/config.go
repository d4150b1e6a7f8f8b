package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Downloader  DownloaderConfig  `yaml:"downloader"`
	Text        TextConfig        `yaml:"text"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	QA          QAConfig          `yaml:"qa"`
	Paths       PathsConfig       `yaml:"paths"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	Mode        string `yaml:"mode"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// MaxUploadBytes is the admission ceiling for uploaded and downloaded media.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB * 1024 * 1024
}

type WhisperConfig struct {
	// Backend is "cli" (whisper.cpp binary) or "http" (faster-whisper sidecar).
	Backend         string        `yaml:"backend"`
	ModelPath       string        `yaml:"model_path"`
	BinaryPath      string        `yaml:"binary_path"`
	URL             string        `yaml:"url"`
	Model           string        `yaml:"model"`
	Language        string        `yaml:"language"`
	Threads         int           `yaml:"threads"`
	MinSegmentBytes int64         `yaml:"min_segment_bytes"`
	Timeout         time.Duration `yaml:"timeout"`
}

type FFmpegConfig struct {
	BinaryPath     string `yaml:"binary_path"`
	Filters        string `yaml:"filters"`
	SegmentSeconds int    `yaml:"segment_seconds"`
}

type DownloaderConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Format     string `yaml:"format"`
}

type TextConfig struct {
	Fillers    []string `yaml:"fillers"`
	ChunkWords int      `yaml:"chunk_words"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
	// APIKeys is filled from GEMINI_API_KEYS / GEMINI_API_KEY, never from the YAML file.
	APIKeys []string `yaml:"-"`
}

type QAConfig struct {
	UseModel     bool `yaml:"use_model"`
	ExcerptChars int  `yaml:"excerpt_chars"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
}

type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// DefaultFilters is the normalization chain: band-limit to speech, denoise, loudness-normalize.
const DefaultFilters = "highpass=f=80,lowpass=f=8000,afftdn,loudnorm"

// DefaultFillers are removed from transcripts as whole words, case-insensitively.
var DefaultFillers = []string{"uh", "um", "you know", "okay", "right", "so"}

func (c *Config) Validate() error {
	switch c.Whisper.Backend {
	case "", "cli":
		c.Whisper.Backend = "cli"
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required")
		}
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required")
		}
	case "http":
		if c.Whisper.URL == "" {
			return fmt.Errorf("whisper.url is required for the http backend")
		}
	default:
		return fmt.Errorf("whisper.backend must be cli or http (got: %s)", c.Whisper.Backend)
	}
	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must not be negative")
	}
	if c.Text.ChunkWords < 0 {
		return fmt.Errorf("text.chunk_words must not be negative")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 20
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.MinSegmentBytes == 0 {
		c.Whisper.MinSegmentBytes = 50 * 1024
	}
	if c.Whisper.Timeout == 0 {
		c.Whisper.Timeout = 120 * time.Second
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.Filters == "" {
		c.FFmpeg.Filters = DefaultFilters
	}
	if c.FFmpeg.SegmentSeconds == 0 {
		c.FFmpeg.SegmentSeconds = 30
	}
	if c.Downloader.BinaryPath == "" {
		c.Downloader.BinaryPath = "yt-dlp"
	}
	if c.Downloader.Format == "" {
		c.Downloader.Format = "bestaudio/best"
	}
	if c.Text.Fillers == nil {
		c.Text.Fillers = DefaultFillers
	}
	if c.Text.ChunkWords == 0 {
		c.Text.ChunkWords = 800
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.QA.ExcerptChars == 0 {
		c.QA.ExcerptChars = 600
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/studyflow.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
