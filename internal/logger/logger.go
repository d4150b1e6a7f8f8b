package logger

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type implLogger struct {
	logger zerolog.Logger
}

// NewWithFormat creates a Logger writing "console" or "json" lines to w.
func NewWithFormat(level, format string, w io.Writer) Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel // default to info
	}

	var out io.Writer = w
	if strings.ToLower(format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return &implLogger{
		logger: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

func (l *implLogger) event(ctx context.Context, e *zerolog.Event, msg string, args []interface{}) {
	if ctx != nil {
		if v, ok := ctx.Value(keySession).(string); ok && v != "" {
			e = e.Str(string(keySession), v)
		}
		if v, ok := ctx.Value(keyRequest).(string); ok && v != "" {
			e = e.Str(string(keyRequest), v)
		}
	}
	e.Msgf(msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.logger.Debug(), msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.logger.Info(), msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.logger.Warn(), msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.event(ctx, l.logger.Error(), msg, args)
}

// Nop returns a Logger that discards everything. Used by tests.
func Nop() Logger {
	return &implLogger{logger: zerolog.Nop()}
}
