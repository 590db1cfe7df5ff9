package sizer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"signal-trading-bot/internal/types"
)

// ErrInvalidPrice means the quote carried no usable price: both ask and
// last-trade were absent or non-positive.
var ErrInvalidPrice = errors.New("no valid price in quote")

// ErrZeroQuantity means the notional buys less than one whole share at
// the current price. Sizing always fails explicitly rather than
// returning zero.
var ErrZeroQuantity = errors.New("calculated quantity is zero or less")

// Price selects the sizing price from a quote: ask if positive, else
// last-trade if positive.
func Price(q types.Quote) (float64, error) {
	if q.Ask > 0 {
		return q.Ask, nil
	}
	if q.Last > 0 {
		return q.Last, nil
	}
	return 0, fmt.Errorf("%w: ask=%.4f last=%.4f", ErrInvalidPrice, q.Ask, q.Last)
}

// Shares converts a target notional amount into a whole-share quantity
// at the quoted price, rounding down, and returns the price it sized
// against. The quote must be freshly fetched; the sizer never caches.
func Shares(notional float64, q types.Quote) (int, float64, error) {
	price, err := Price(q)
	if err != nil {
		return 0, 0, err
	}

	qty := decimal.NewFromFloat(notional).
		Div(decimal.NewFromFloat(price)).
		Floor().
		IntPart()
	if qty <= 0 {
		return 0, price, fmt.Errorf("%w: notional=%.2f price=%.4f", ErrZeroQuantity, notional, price)
	}

	return int(qty), price, nil
}
