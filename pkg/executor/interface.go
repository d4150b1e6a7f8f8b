package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// Available reports whether the named binary can be resolved and started.
	Available(ctx context.Context, name string, probeArgs ...string) bool
}
