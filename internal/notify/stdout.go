package notify

import (
	"context"
	"fmt"

	"signal-trading-bot/internal/interfaces"
)

// StdoutNotifier prints alerts to standard output. Used when
// notifications are disabled in config, so the rest of the pipeline
// never needs a nil check.
type StdoutNotifier struct{}

var _ interfaces.Notifier = (*StdoutNotifier)(nil)

func NewStdoutNotifier() *StdoutNotifier {
	return &StdoutNotifier{}
}

func (s *StdoutNotifier) Send(ctx context.Context, message, title string, priority int) bool {
	fmt.Printf("[NOTIFY p=%d] %s: %s\n", priority, title, message)
	return true
}
