package engine

import (
	"context"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/sizer"
	"signal-trading-bot/internal/tradelog"
	"signal-trading-bot/internal/types"
)

// Engine drives one order submission through its state machine:
//
//	Pending -> Submitted -> {Confirmed | Unconfirmed}
//
// with Failed reachable from any point. It never retries a logical
// order request: an ambiguous broker response must not be resolved by
// submitting the same financial side effect again. A caller that wants
// another attempt constructs a new request deliberately.
type Engine struct {
	brk      interfaces.Broker
	notional float64
}

func New(brk interfaces.Broker, notional float64) *Engine {
	return &Engine{brk: brk, notional: notional}
}

// Buy fetches a fresh quote, sizes the configured notional into whole
// shares, and submits a market buy. Returns the terminal order result
// and the submitted quantity.
func (e *Engine) Buy(ctx context.Context, symbol string) (types.OrderResult, int, error) {
	return e.execute(ctx, symbol, types.SideBuy, 0)
}

// Sell submits a market sell. A positive qty is used as-is (e.g. when
// unwinding a quantity known from an earlier buy in the same run);
// qty <= 0 sizes from the notional like Buy does.
func (e *Engine) Sell(ctx context.Context, symbol string, qty int) (types.OrderResult, int, error) {
	return e.execute(ctx, symbol, types.SideSell, qty)
}

// execute is the single submission primitive both sides funnel through.
func (e *Engine) execute(ctx context.Context, symbol string, side types.Side, qty int) (types.OrderResult, int, error) {
	if qty <= 0 {
		// The quote is fetched here, immediately before sizing, and
		// never reused from an earlier cycle or stage.
		quote, err := e.brk.Quote(ctx, symbol)
		if err != nil {
			return types.OrderResult{State: types.OrderFailed}, 0, err
		}
		var price float64
		qty, price, err = sizer.Shares(e.notional, quote)
		if err != nil {
			return types.OrderResult{State: types.OrderFailed}, 0, err
		}
		logger.Debug(ctx, "Order sized", "symbol", symbol, "notional", e.notional, "price", price, "qty", qty)
	}

	state := types.OrderPending
	logger.Debug(ctx, "Order state", "symbol", symbol, "state", string(state))

	sub, err := e.brk.SubmitOrder(ctx, types.OrderReq{Symbol: symbol, Side: side, Qty: qty})
	if err != nil {
		res := types.OrderResult{State: types.OrderFailed}
		e.journal(symbol, side, qty, res, err.Error())
		return res, qty, nil
	}

	res := resolve(ctx, sub)
	if res.State != types.OrderFailed {
		state = types.OrderSubmitted
		logger.Debug(ctx, "Order state", "symbol", symbol, "state", string(state))
	}

	logger.Trade(ctx, symbol, string(side), qty, string(res.State), res.OrderID)
	e.journal(symbol, side, qty, res, "")
	return res, qty, nil
}

// resolve turns a transport outcome into a terminal order state. A
// success status with a parseable order id confirms the order; success
// without one leaves the true outcome unknown to us.
func resolve(ctx context.Context, sub types.Submission) types.OrderResult {
	if sub.StatusCode < 200 || sub.StatusCode >= 300 {
		return types.OrderResult{State: types.OrderFailed}
	}

	id, outcome := ParseOrderID(sub.Location)
	switch outcome {
	case IDPresent:
		return types.OrderResult{OrderID: id, State: types.OrderConfirmed}
	default:
		logger.Warn(ctx, "Order accepted but identifier not parseable",
			"location", sub.Location,
			"outcome", outcome.String(),
		)
		return types.OrderResult{State: types.OrderUnconfirmed}
	}
}

func (e *Engine) journal(symbol string, side types.Side, qty int, res types.OrderResult, reason string) {
	_ = tradelog.Append(tradelog.Entry{
		Symbol:  symbol,
		Side:    string(side),
		Qty:     qty,
		OrderID: res.OrderID,
		State:   string(res.State),
		Reason:  reason,
	})
}
