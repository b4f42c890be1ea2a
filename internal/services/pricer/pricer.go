// Package pricer reads current market prices from the exchange.
package pricer

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// BinancePricer reads prices from the Binance order-book ticker.
type BinancePricer struct {
	client *binance.Client
}

// NewBinancePricer creates the pricer.
func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

// BidPrice returns the best bid for the symbol.
func (p *BinancePricer) BidPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	tickers, err := p.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetch book ticker for %s", symbol)
	}
	if len(tickers) == 0 {
		return decimal.Zero, errors.Errorf("binance API returned empty book ticker for %s", symbol)
	}

	bid, err := decimal.NewFromString(tickers[0].BidPrice)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse bid price %q", tickers[0].BidPrice)
	}
	return bid, nil
}
