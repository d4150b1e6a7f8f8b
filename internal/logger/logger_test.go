package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := NewWithFormat("info", "json", &buf)

	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")
	log.Info(ctx, "formatted message: %s %d", "test", 123)

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug line written at info level")
	}
	for _, want := range []string{"info message", "warn message", "error message", "formatted message: test 123"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		format      string
		logLevel    string
		want        bool
	}{
		{"debug logs at debug level", "debug", "json", "debug", true},
		{"info logs at debug level", "debug", "json", "info", true},
		{"debug doesn't log at info level", "info", "json", "debug", false},
		{"info logs at info level", "INFO", "json", "info", true},
		{"error always logs", "error", "console", "error", true},
		{"warn dropped at error level", "error", "console", "warn", false},
		{"invalid config defaults to info", "bogus", "json", "debug", false},
		{"invalid config still logs info", "bogus", "console", "info", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithFormat(tt.configLevel, tt.format, &buf)
			logAt(log, tt.logLevel, "hello")
			if got := strings.Contains(buf.String(), "hello"); got != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func logAt(log Logger, level, msg string) {
	ctx := context.Background()
	switch level {
	case "debug":
		log.Debug(ctx, msg)
	case "info":
		log.Info(ctx, msg)
	case "warn":
		log.Warn(ctx, msg)
	default:
		log.Error(ctx, msg)
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error(context.Background(), "dropped %d", 1)
}

func TestContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("debug", "json", &buf)

	ctx := WithRequest(WithSession(context.Background(), "sess-1"), "req-9")
	log.Info(ctx, "tagged")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", line["session_id"])
	}
	if line["request_id"] != "req-9" {
		t.Errorf("request_id = %v", line["request_id"])
	}
}
