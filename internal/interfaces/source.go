package interfaces

import "context"

// Source yields zero or one new text item per poll.
type Source interface {
	// Next returns the newest post text, or "" when nothing new is
	// available.
	Next(ctx context.Context) (string, error)
	// Ready is a cheap probe for new content, checked once per tick
	// during the wait window; true ends the wait early.
	Ready() bool
	// Close releases the source session. Best-effort: the runner calls
	// it from a detached goroutine at shutdown and does not wait.
	Close()
}
