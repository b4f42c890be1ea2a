// Package trader submits orders to Binance and reads account state.
package trader

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

const clientOrderIDPrefix = "dca-"

// BinanceTrader places spot market orders on Binance.
type BinanceTrader struct {
	client *binance.Client
}

// NewBinanceTrader creates the trader.
func NewBinanceTrader(client *binance.Client) *BinanceTrader {
	return &BinanceTrader{client: client}
}

// MarketBuy submits a market buy for the symbol, sized either by a fixed
// base quantity or by a quote amount to spend. Exactly one of the two must
// be non-zero; validation upstream guarantees that.
func (t *BinanceTrader) MarketBuy(ctx context.Context, symbol string, quantity, quoteOrderQty decimal.Decimal) (*domain.OrderResult, error) {
	svc := t.client.NewCreateOrderService().
		Symbol(symbol).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		NewClientOrderID(clientOrderIDPrefix + uuid.NewString()).
		NewOrderRespType(binance.NewOrderRespTypeFULL)

	if !quantity.IsZero() {
		svc = svc.Quantity(quantity.String())
	} else {
		svc = svc.QuoteOrderQty(quoteOrderQty.String())
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "market buy %s", symbol)
	}

	return normalizeOrder(resp)
}

// AccountInfo returns whether the account may trade, plus all non-zero
// balances.
func (t *BinanceTrader) AccountInfo(ctx context.Context) (bool, []domain.BalanceSnapshot, error) {
	account, err := t.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return false, nil, errors.Wrap(err, "fetch binance account")
	}

	balances := make([]domain.BalanceSnapshot, 0, len(account.Balances))
	for _, b := range account.Balances {
		snap, err := parseBalance(b)
		if err != nil {
			return false, nil, err
		}
		if snap.Free.IsZero() && snap.Locked.IsZero() {
			continue
		}
		balances = append(balances, snap)
	}
	return account.CanTrade, balances, nil
}

// FreeBalance returns the balance of a single asset. A currency the
// account never held comes back as a zero snapshot, not an error.
func (t *BinanceTrader) FreeBalance(ctx context.Context, asset string) (domain.BalanceSnapshot, error) {
	account, err := t.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "fetch binance account")
	}

	for _, b := range account.Balances {
		if b.Asset != asset {
			continue
		}
		return parseBalance(b)
	}
	return domain.BalanceSnapshot{Asset: asset, Free: decimal.Zero, Locked: decimal.Zero}, nil
}

func parseBalance(b binance.Balance) (domain.BalanceSnapshot, error) {
	free, err := decimal.NewFromString(b.Free)
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrapf(err, "parse free balance for %s", b.Asset)
	}
	locked, err := decimal.NewFromString(b.Locked)
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrapf(err, "parse locked balance for %s", b.Asset)
	}
	return domain.BalanceSnapshot{Asset: b.Asset, Free: free, Locked: locked}, nil
}

func normalizeOrder(resp *binance.CreateOrderResponse) (*domain.OrderResult, error) {
	executedQty, err := decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil {
		return nil, errors.Wrap(err, "parse executed quantity")
	}
	cumQuote, err := decimal.NewFromString(resp.CummulativeQuoteQuantity)
	if err != nil {
		return nil, errors.Wrap(err, "parse cumulative quote quantity")
	}

	fills := make([]domain.Fill, 0, len(resp.Fills))
	for _, f := range resp.Fills {
		price, err := decimal.NewFromString(f.Price)
		if err != nil {
			return nil, errors.Wrap(err, "parse fill price")
		}
		qty, err := decimal.NewFromString(f.Quantity)
		if err != nil {
			return nil, errors.Wrap(err, "parse fill quantity")
		}
		commission, err := decimal.NewFromString(f.Commission)
		if err != nil {
			return nil, errors.Wrap(err, "parse fill commission")
		}
		fills = append(fills, domain.Fill{
			Price:           price,
			Quantity:        qty,
			Commission:      commission,
			CommissionAsset: f.CommissionAsset,
		})
	}

	return &domain.OrderResult{
		OrderID:            resp.OrderID,
		ClientOrderID:      resp.ClientOrderID,
		Symbol:             resp.Symbol,
		ExecutedQty:        executedQty,
		CumulativeQuoteQty: cumQuote,
		Fills:              fills,
		TransactTime:       time.UnixMilli(resp.TransactTime),
	}, nil
}
