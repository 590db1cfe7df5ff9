package interfaces

import "context"

// Notifier delivers an outcome message to the operator. Send never
// returns an error; delivery failures are logged and reported as false.
type Notifier interface {
	Send(ctx context.Context, message, title string, priority int) bool
}
