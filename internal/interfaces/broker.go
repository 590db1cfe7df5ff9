package interfaces

import (
	"context"

	"signal-trading-bot/internal/types"
)

type Broker interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
	SubmitOrder(ctx context.Context, req types.OrderReq) (types.Submission, error)
}
