// Package indicator fetches the long-window moving average used by the
// dynamic order-size algorithm.
package indicator

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source provides a single scalar indicator value for an asset/currency
// pair. An error means "weighting unavailable for this firing": callers
// fall back to the trade's static spend, they never fail the execution.
type Source interface {
	MovingAverage(ctx context.Context, asset, currency string) (decimal.Decimal, error)
}
