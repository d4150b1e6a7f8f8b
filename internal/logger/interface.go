package logger

import "context"

// Logger is the printf-style, context-aware logger used across the service.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}

type ctxKey string

const (
	keySession ctxKey = "session_id"
	keyRequest ctxKey = "request_id"
)

// WithSession tags every line logged with ctx by the session ID.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keySession, id)
}

// WithRequest tags every line logged with ctx by the HTTP request ID.
func WithRequest(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequest, id)
}
