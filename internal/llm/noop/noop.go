package noop

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/types"
)

// NoopClassifier never produces a signal. Used when no LLM provider is
// configured.
type NoopClassifier struct{}

var _ interfaces.Classifier = (*NoopClassifier)(nil)

func NewNoopClassifier() *NoopClassifier {
	return &NoopClassifier{}
}

func (n *NoopClassifier) Classify(ctx context.Context, text string) (*types.Signal, error) {
	return nil, nil
}
