// Package session persists lecture processing sessions so results can be
// queried, exported and questioned after the pipeline finishes.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("session not found")

// Store is the session repository.
type Store interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	List(ctx context.Context, limit int) ([]Session, error)
	MarkProcessing(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, out Output) error
	Fail(ctx context.Context, id, reason string) error
	// FailInterrupted fails sessions left in processing by a previous run.
	FailInterrupted(ctx context.Context) (int64, error)
	Close() error
}
