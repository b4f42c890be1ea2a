package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is a single partial execution of an order, with the commission
// charged for it.
type Fill struct {
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commission_asset"`
}

// OrderResult is the normalized record of one accepted order. A rejected
// submission never produces an OrderResult; it surfaces as an error from
// the trading client.
type OrderResult struct {
	OrderID       int64           `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	ExecutedQty   decimal.Decimal `json:"executed_qty"`
	// CumulativeQuoteQty is the total quote currency spent across all fills.
	CumulativeQuoteQty decimal.Decimal `json:"cumulative_quote_qty"`
	Fills              []Fill          `json:"fills"`
	TransactTime       time.Time       `json:"transact_time"`
}

// AveragePrice returns the volume-weighted fill price, or zero when
// nothing was executed.
func (o *OrderResult) AveragePrice() decimal.Decimal {
	if o.ExecutedQty.IsZero() {
		return decimal.Zero
	}
	return o.CumulativeQuoteQty.Div(o.ExecutedQty)
}

// BalanceSnapshot is a single currency's balance at one point in time.
// It is read after a successful order to decide whether a low-balance
// warning should go out; it is not persisted.
type BalanceSnapshot struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// OrderRecord bundles a persisted order with its log index.
type OrderRecord struct {
	Index uint64
	Order OrderResult
}
