package llmobs

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

// observableClassifier wraps a Classifier with observability (logging & tracing)
type observableClassifier struct {
	classifier interfaces.Classifier
}

// Compile-time interface check
var _ interfaces.Classifier = (*observableClassifier)(nil)

// Wrap wraps a classifier with observability middleware
func Wrap(classifier interfaces.Classifier) interfaces.Classifier {
	return &observableClassifier{classifier: classifier}
}

func (oc *observableClassifier) Classify(ctx context.Context, text string) (*types.Signal, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Classify")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting classification", "text_len", len(text))

	sig, err := oc.classifier.Classify(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Classification failed", err)
		return nil, err
	}

	if sig == nil {
		logger.InfoSkip(ctx, 1, "No signal produced")
		return nil, nil
	}

	logger.InfoSkip(ctx, 1, "Signal classified",
		"subject", sig.Subject,
		"direction", string(sig.Direction),
	)
	return sig, nil
}
