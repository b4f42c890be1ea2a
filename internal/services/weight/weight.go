// Package weight implements the dynamic order-size algorithm that scales a
// trade's configured spend by the asset's Mayer Multiple and its distance
// from the all-time high.
package weight

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

// supportedFiat is the only quote currency the weighting parameters are
// calibrated for. Trades in any other quote keep their static spend.
const supportedFiat = "USDT"

// SupportsWeighting reports whether dynamic sizing applies to trades
// quoted in the given currency.
func SupportsWeighting(currency string) bool {
	return strings.EqualFold(currency, supportedFiat)
}

// AdjustedSpend computes the spend amount for one firing of a weighted
// trade. It is a pure function of its inputs: the trade's static spend,
// the weighting parameters, the long-window moving average and the current
// price. The result is rounded to 2 decimal places; a zero result means
// the firing should be skipped entirely.
//
// The caller must have validated w (MayerMultipleAvg == MayerMultipleMax
// makes the weighting constant undefined) and must pass a positive
// movingAverage.
func AdjustedSpend(base decimal.Decimal, w domain.WeightSpec, movingAverage, currentPrice decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)

	mayerMultiple := currentPrice.Div(movingAverage)

	// Squaring drops the sign: being far above the ATH anchor is penalized
	// the same as being far below it.
	athDelta := w.MaxATHFactor.Sub(currentPrice.Div(w.ATH))
	athFactor := athDelta.Mul(athDelta)

	mayerWeightConstant := one.Div(one.Sub(w.MayerMultipleAvg.Div(w.MayerMultipleMax)))
	currentWeightMultiple := one.Sub(mayerMultiple.Div(w.MayerMultipleMax))

	// A negative product means the current multiple exceeds the configured
	// maximum: clamp to zero, never to a negative purchase.
	mayerFactor := mayerWeightConstant.Mul(currentWeightMultiple)
	if mayerFactor.IsNegative() {
		mayerFactor = decimal.Zero
	}

	return base.Mul(mayerFactor).Mul(athFactor).Round(2)
}
