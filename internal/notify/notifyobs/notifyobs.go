package notifyobs

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
)

// observableNotifier wraps a Notifier with observability (logging & tracing)
type observableNotifier struct {
	notifier interfaces.Notifier
}

// Compile-time interface check
var _ interfaces.Notifier = (*observableNotifier)(nil)

// Wrap wraps a notifier with observability middleware
func Wrap(notifier interfaces.Notifier) interfaces.Notifier {
	return &observableNotifier{notifier: notifier}
}

func (on *observableNotifier) Send(ctx context.Context, message, title string, priority int) bool {
	ctx, span := trace.StartSpan(ctx, "notify.Send")
	defer span.End()

	ok := on.notifier.Send(ctx, message, title, priority)
	if ok {
		logger.InfoSkip(ctx, 1, "Notification delivered", "title", title, "priority", priority)
	} else {
		logger.WarnSkip(ctx, 1, "Notification lost", "title", title, "priority", priority)
	}
	return ok
}
