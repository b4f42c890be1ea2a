// Package domain defines core data structures used throughout the DCA bot.
package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TradeSpec is one configured recurring or one-off purchase. It is built
// once from configuration at startup and never mutated afterwards.
type TradeSpec struct {
	// Asset base currency ticker, e.g. BTC.
	Asset string
	// Currency quote currency ticker, e.g. USDT.
	Currency string
	// Quantity fixed amount of the asset to buy. Mutually exclusive with QuoteOrderQty.
	Quantity decimal.Decimal
	// QuoteOrderQty fixed amount of the quote currency to spend.
	QuoteOrderQty decimal.Decimal
	// Schedule cron expression. Empty means fire once, immediately at startup.
	Schedule string
	// Weight optional dynamic sizing parameters.
	Weight *WeightSpec
}

// Symbol returns the exchange symbol for the trade, e.g. BTCUSDT.
func (t *TradeSpec) Symbol() string {
	return t.Asset + t.Currency
}

// String returns a human-readable description of the purchase amount.
func (t *TradeSpec) String() string {
	if !t.Quantity.IsZero() {
		return fmt.Sprintf("%s %s", t.Quantity.String(), t.Asset)
	}
	return fmt.Sprintf("%s %s worth of %s", t.QuoteOrderQty.String(), t.Currency, t.Asset)
}

// Validate checks the trade definition. ErrConflictingSizeSpec and
// ErrInvalidWeightSpec abort startup; any other error marks the single
// trade invalid so callers can skip it and keep the rest of the schedule.
func (t *TradeSpec) Validate() error {
	if !t.Quantity.IsZero() && !t.QuoteOrderQty.IsZero() {
		return errors.Wrapf(ErrConflictingSizeSpec, "trade %s", t.Symbol())
	}
	if t.Asset == "" {
		return errors.New("asset is not set")
	}
	if t.Currency == "" {
		return errors.New("currency is not set")
	}
	if t.Quantity.IsZero() && t.QuoteOrderQty.IsZero() {
		return fmt.Errorf("trade %s sets neither quantity nor quote_order_qty", t.Symbol())
	}
	if t.Weight != nil {
		if err := t.Weight.Validate(); err != nil {
			return errors.Wrapf(err, "trade %s", t.Symbol())
		}
	}
	return nil
}

// WeightSpec holds the parameters of the dynamic order-size algorithm.
type WeightSpec struct {
	// MaxATHFactor baseline multiplier anchor for the ATH distance penalty.
	MaxATHFactor decimal.Decimal
	// ATH all-time-high reference price.
	ATH decimal.Decimal
	// MayerMultipleAvg historical average of the Mayer Multiple.
	MayerMultipleAvg decimal.Decimal
	// MayerMultipleMax configured ceiling of the Mayer Multiple.
	MayerMultipleMax decimal.Decimal
}

// Validate rejects parameter combinations for which the weighting constant
// is undefined. Failing here keeps division by zero out of the calculator.
func (w *WeightSpec) Validate() error {
	if !w.ATH.IsPositive() {
		return errors.Wrap(ErrInvalidWeightSpec, "ath must be positive")
	}
	if !w.MayerMultipleMax.IsPositive() {
		return errors.Wrap(ErrInvalidWeightSpec, "mayer_multiple_max must be positive")
	}
	if w.MayerMultipleAvg.Equal(w.MayerMultipleMax) {
		return errors.Wrap(ErrInvalidWeightSpec, "mayer_multiple_avg must not equal mayer_multiple_max")
	}
	return nil
}
