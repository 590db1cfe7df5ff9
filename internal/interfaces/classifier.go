package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

// Classifier turns post text into a Signal. A nil Signal with a nil
// error means "no signal" (empty input or an unparsable response); a
// non-nil error is a transport failure.
type Classifier interface {
	Classify(ctx context.Context, text string) (*types.Signal, error)
}
