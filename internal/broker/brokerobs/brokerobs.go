package brokerobs

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{broker: broker}
}

func (ob *observableBroker) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Quote")
	defer span.End()

	q, err := ob.broker.Quote(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quote", err, "symbol", symbol)
		return types.Quote{}, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched", "symbol", symbol, "ask", q.Ask, "last", q.Last)
	return q, nil
}

func (ob *observableBroker) SubmitOrder(ctx context.Context, req types.OrderReq) (types.Submission, error) {
	ctx, span := trace.StartSpan(ctx, "broker.SubmitOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting order",
		"symbol", req.Symbol,
		"side", string(req.Side),
		"qty", req.Qty,
	)

	sub, err := ob.broker.SubmitOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Order submission failed", err,
			"symbol", req.Symbol,
			"side", string(req.Side),
			"qty", req.Qty,
		)
		return types.Submission{}, err
	}

	logger.InfoSkip(ctx, 1, "Order submission returned",
		"symbol", req.Symbol,
		"status", sub.StatusCode,
		"location", sub.Location,
	)
	return sub, nil
}
