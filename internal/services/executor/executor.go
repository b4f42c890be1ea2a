// Package executor turns one trade firing into at most one market order
// and drives every observable side effect of the outcome.
package executor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vutang50/binance-dca-bot/internal/domain"
	"github.com/vutang50/binance-dca-bot/internal/services/notifier"
	"github.com/vutang50/binance-dca-bot/internal/services/trader"
	"github.com/vutang50/binance-dca-bot/internal/services/weight"
)

type tradersvc interface {
	MarketBuy(ctx context.Context, symbol string, quantity, quoteOrderQty decimal.Decimal) (*domain.OrderResult, error)
	FreeBalance(ctx context.Context, asset string) (domain.BalanceSnapshot, error)
}

type pricer interface {
	BidPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type indicatorSource interface {
	MovingAverage(ctx context.Context, asset, currency string) (decimal.Decimal, error)
}

type orderStore interface {
	Save(order domain.OrderResult) error
}

type broadcaster interface {
	Broadcast(ctx context.Context, subject, body string)
}

// Executor executes single trade firings.
type Executor struct {
	trader             tradersvc
	pricer             pricer
	indicators         indicatorSource
	store              orderStore
	notify             broadcaster
	balanceAlertFactor decimal.Decimal
	l                  *zap.Logger
}

// New creates the executor. balanceAlertFactor is the low-balance warning
// threshold: a warning goes out when totalCost * factor exceeds the free
// quote balance left after the purchase.
func New(t tradersvc, p pricer, ind indicatorSource, store orderStore, notify broadcaster,
	balanceAlertFactor decimal.Decimal, l *zap.Logger) *Executor {
	return &Executor{
		trader:             t,
		pricer:             p,
		indicators:         ind,
		store:              store,
		notify:             notify,
		balanceAlertFactor: balanceAlertFactor,
		l:                  l,
	}
}

// Execute runs one firing of the trade: resolve the spend amount, submit
// the order, then persist, notify and check the remaining balance, in that
// order. The returned error is for the caller's log; every user-visible
// outcome has already been delivered through the notification channels.
func (e *Executor) Execute(ctx context.Context, trade domain.TradeSpec) error {
	symbol := trade.Symbol()

	spend := trade.QuoteOrderQty
	if trade.Quantity.IsZero() && trade.Weight != nil && weight.SupportsWeighting(trade.Currency) {
		spend = e.resolveSpend(ctx, trade)
	}

	if trade.Quantity.IsZero() && spend.IsZero() {
		e.l.Info("purchase skipped by weighting algorithm", zap.String("symbol", symbol))
		e.notify.Broadcast(ctx, notifier.SubjectSkipped, notifier.FormatPurchaseSkipped(trade))
		return nil
	}

	order, err := e.trader.MarketBuy(ctx, symbol, trade.Quantity, spend)
	if err != nil {
		e.l.Error("market buy failed", zap.String("symbol", symbol), zap.Error(err))
		e.notify.Broadcast(ctx, notifier.SubjectOrderFail, notifier.FormatOrderFailed(trade, trader.ErrorMessage(err)))
		return errors.Wrapf(err, "market buy %s", symbol)
	}

	e.l.Info("order executed",
		zap.String("symbol", symbol),
		zap.Int64("order_id", order.OrderID),
		zap.String("executed_qty", order.ExecutedQty.String()),
		zap.String("total_cost", order.CumulativeQuoteQty.String()))

	// Persist before notifying so the message can reference an order the
	// log already acknowledges. A write failure never undoes the purchase.
	if err := e.store.Save(*order); err != nil {
		e.l.Error("failed to persist order", zap.Int64("order_id", order.OrderID), zap.Error(err))
	}

	e.notify.Broadcast(ctx, notifier.SubjectOrder, notifier.FormatOrderPlaced(trade, order))

	e.checkBalance(ctx, trade, order)
	return nil
}

// resolveSpend applies the weighting algorithm to the trade's static spend.
// Any indicator or ticker failure degrades to the static amount; weighting
// being unavailable must never fail the firing.
func (e *Executor) resolveSpend(ctx context.Context, trade domain.TradeSpec) decimal.Decimal {
	movingAverage, err := e.indicators.MovingAverage(ctx, trade.Asset, trade.Currency)
	if err != nil {
		e.l.Warn("weighting unavailable, using static spend",
			zap.String("symbol", trade.Symbol()), zap.Error(err))
		return trade.QuoteOrderQty
	}
	// The calculator divides by the moving average; a non-positive value
	// from the source is garbage data, not a reason to skip the purchase.
	if !movingAverage.IsPositive() {
		e.l.Warn("non-positive moving average, using static spend",
			zap.String("symbol", trade.Symbol()),
			zap.String("moving_average", movingAverage.String()))
		return trade.QuoteOrderQty
	}

	price, err := e.pricer.BidPrice(ctx, trade.Symbol())
	if err != nil {
		e.l.Warn("price unavailable, using static spend",
			zap.String("symbol", trade.Symbol()), zap.Error(err))
		return trade.QuoteOrderQty
	}
	if !price.IsPositive() {
		e.l.Warn("non-positive bid price, using static spend",
			zap.String("symbol", trade.Symbol()), zap.String("price", price.String()))
		return trade.QuoteOrderQty
	}

	adjusted := weight.AdjustedSpend(trade.QuoteOrderQty, *trade.Weight, movingAverage, price)
	e.l.Info("spend adjusted by weighting",
		zap.String("symbol", trade.Symbol()),
		zap.String("base", trade.QuoteOrderQty.String()),
		zap.String("moving_average", movingAverage.String()),
		zap.String("price", price.String()),
		zap.String("adjusted", adjusted.String()))
	return adjusted
}

// checkBalance warns when fewer than balanceAlertFactor purchases of this
// size remain affordable, measured against the post-trade free balance.
func (e *Executor) checkBalance(ctx context.Context, trade domain.TradeSpec, order *domain.OrderResult) {
	snap, err := e.trader.FreeBalance(ctx, trade.Currency)
	if err != nil {
		e.l.Error("failed to fetch balance after trade",
			zap.String("currency", trade.Currency), zap.Error(err))
		return
	}

	if order.CumulativeQuoteQty.Mul(e.balanceAlertFactor).GreaterThan(snap.Free) {
		e.l.Warn("low balance",
			zap.String("currency", trade.Currency),
			zap.String("free", snap.Free.String()),
			zap.String("total_cost", order.CumulativeQuoteQty.String()))
		e.notify.Broadcast(ctx, notifier.SubjectLowBalance,
			notifier.FormatLowBalance(trade.Currency, snap.Free, order.CumulativeQuoteQty, e.balanceAlertFactor))
	}
}
