package executor

import (
	"context"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vutang50/binance-dca-bot/internal/domain"
	"github.com/vutang50/binance-dca-bot/internal/services/notifier"
)

type fakeTrader struct {
	buyCalls     int
	gotQuantity  decimal.Decimal
	gotQuote     decimal.Decimal
	order        *domain.OrderResult
	buyErr       error
	freeBalance  decimal.Decimal
	balanceErr   error
	balanceCalls int
}

func (f *fakeTrader) MarketBuy(_ context.Context, _ string, quantity, quoteOrderQty decimal.Decimal) (*domain.OrderResult, error) {
	f.buyCalls++
	f.gotQuantity = quantity
	f.gotQuote = quoteOrderQty
	return f.order, f.buyErr
}

func (f *fakeTrader) FreeBalance(_ context.Context, asset string) (domain.BalanceSnapshot, error) {
	f.balanceCalls++
	return domain.BalanceSnapshot{Asset: asset, Free: f.freeBalance}, f.balanceErr
}

type fakePricer struct {
	price decimal.Decimal
	err   error
}

func (f *fakePricer) BidPrice(context.Context, string) (decimal.Decimal, error) {
	return f.price, f.err
}

type fakeIndicator struct {
	value decimal.Decimal
	err   error
	calls int
}

func (f *fakeIndicator) MovingAverage(context.Context, string, string) (decimal.Decimal, error) {
	f.calls++
	return f.value, f.err
}

type fakeStore struct {
	saved []domain.OrderResult
	err   error
}

func (f *fakeStore) Save(order domain.OrderResult) error {
	f.saved = append(f.saved, order)
	return f.err
}

type fakeBroadcaster struct {
	subjects []string
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, subject, _ string) {
	f.subjects = append(f.subjects, subject)
}

func testOrder() *domain.OrderResult {
	return &domain.OrderResult{
		OrderID:            42,
		Symbol:             "BTCUSDT",
		ExecutedQty:        decimal.NewFromFloat(0.001),
		CumulativeQuoteQty: decimal.NewFromInt(50),
		TransactTime:       time.Now(),
	}
}

func weightedTrade() domain.TradeSpec {
	return domain.TradeSpec{
		Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100),
		Weight: &domain.WeightSpec{
			MaxATHFactor:     decimal.NewFromFloat(1.0),
			ATH:              decimal.NewFromInt(50000),
			MayerMultipleAvg: decimal.NewFromFloat(1.2),
			MayerMultipleMax: decimal.NewFromFloat(2.4),
		},
	}
}

func newExecutor(t *fakeTrader, p *fakePricer, ind *fakeIndicator, store *fakeStore, notify *fakeBroadcaster) *Executor {
	return New(t, p, ind, store, notify, decimal.NewFromInt(5), zap.NewNop())
}

func TestExecuteSuccess(t *testing.T) {
	tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(500)}
	store := &fakeStore{}
	notify := &fakeBroadcaster{}
	trade := domain.TradeSpec{Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100)}

	err := newExecutor(tr, &fakePricer{}, &fakeIndicator{}, store, notify).Execute(context.Background(), trade)
	require.NoError(t, err)

	require.Equal(t, 1, tr.buyCalls)
	require.True(t, tr.gotQuote.Equal(decimal.NewFromInt(100)))
	require.Len(t, store.saved, 1)
	require.Equal(t, []string{notifier.SubjectOrder}, notify.subjects)
	require.Equal(t, 1, tr.balanceCalls)
}

func TestExecuteLowBalanceWarning(t *testing.T) {
	// totalCost=50, factor=5: 250 > 100 warns, 250 > 500 does not.
	for _, tc := range []struct {
		name string
		free int64
		warn bool
	}{
		{name: "free below threshold", free: 100, warn: true},
		{name: "free above threshold", free: 500, warn: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(tc.free)}
			notify := &fakeBroadcaster{}
			trade := domain.TradeSpec{Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(50)}

			err := newExecutor(tr, &fakePricer{}, &fakeIndicator{}, &fakeStore{}, notify).Execute(context.Background(), trade)
			require.NoError(t, err)

			wantSubjects := []string{notifier.SubjectOrder}
			if tc.warn {
				wantSubjects = append(wantSubjects, notifier.SubjectLowBalance)
			}
			require.Equal(t, wantSubjects, notify.subjects)
		})
	}
}

func TestExecuteOrderRejected(t *testing.T) {
	tr := &fakeTrader{buyErr: &common.APIError{Code: -2010, Message: "Account has insufficient balance for requested action."}}
	store := &fakeStore{}
	notify := &fakeBroadcaster{}
	trade := domain.TradeSpec{Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100)}

	err := newExecutor(tr, &fakePricer{}, &fakeIndicator{}, store, notify).Execute(context.Background(), trade)
	require.Error(t, err)

	require.Empty(t, store.saved)
	require.Equal(t, []string{notifier.SubjectOrderFail}, notify.subjects)
	require.Zero(t, tr.balanceCalls)
}

func TestExecuteZeroAdjustedSpendSkipsOrder(t *testing.T) {
	// price at the ATH anchor zeroes the ath factor, so the adjusted spend
	// rounds to zero and no order may reach the exchange.
	tr := &fakeTrader{order: testOrder()}
	notify := &fakeBroadcaster{}
	ind := &fakeIndicator{value: decimal.NewFromInt(50000)}
	pricer := &fakePricer{price: decimal.NewFromInt(50000)}

	err := newExecutor(tr, pricer, ind, &fakeStore{}, notify).Execute(context.Background(), weightedTrade())
	require.NoError(t, err)

	require.Zero(t, tr.buyCalls)
	require.Equal(t, []string{notifier.SubjectSkipped}, notify.subjects)
}

func TestExecuteWeightingAdjustsSpend(t *testing.T) {
	tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(10000)}
	ind := &fakeIndicator{value: decimal.NewFromInt(20000)}
	pricer := &fakePricer{price: decimal.NewFromInt(25000)}

	err := newExecutor(tr, pricer, ind, &fakeStore{}, &fakeBroadcaster{}).Execute(context.Background(), weightedTrade())
	require.NoError(t, err)

	require.Equal(t, 1, tr.buyCalls)
	require.True(t, tr.gotQuote.Equal(decimal.RequireFromString("23.96")), "got %s", tr.gotQuote.String())
}

func TestExecuteBadMarketDataFallsBackToStaticSpend(t *testing.T) {
	// A source answering zero (or worse) must not reach the calculator,
	// which divides by the moving average. The firing degrades to the
	// static spend and the purchase still happens.
	for _, tc := range []struct {
		name  string
		ma    decimal.Decimal
		price decimal.Decimal
	}{
		{name: "zero moving average", ma: decimal.Zero, price: decimal.NewFromInt(25000)},
		{name: "negative moving average", ma: decimal.NewFromInt(-1), price: decimal.NewFromInt(25000)},
		{name: "zero bid price", ma: decimal.NewFromInt(20000), price: decimal.Zero},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(10000)}
			ind := &fakeIndicator{value: tc.ma}
			pricer := &fakePricer{price: tc.price}

			require.NotPanics(t, func() {
				err := newExecutor(tr, pricer, ind, &fakeStore{}, &fakeBroadcaster{}).Execute(context.Background(), weightedTrade())
				require.NoError(t, err)
			})

			require.Equal(t, 1, tr.buyCalls)
			require.True(t, tr.gotQuote.Equal(decimal.NewFromInt(100)))
		})
	}
}

func TestExecuteIndicatorFailureFallsBackToStaticSpend(t *testing.T) {
	tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(10000)}
	ind := &fakeIndicator{err: errors.New("moving average unavailable after 2 attempts")}

	err := newExecutor(tr, &fakePricer{}, ind, &fakeStore{}, &fakeBroadcaster{}).Execute(context.Background(), weightedTrade())
	require.NoError(t, err)

	require.Equal(t, 1, tr.buyCalls)
	require.True(t, tr.gotQuote.Equal(decimal.NewFromInt(100)))
}

func TestExecuteUnsupportedCurrencySkipsWeighting(t *testing.T) {
	tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(10000)}
	ind := &fakeIndicator{value: decimal.NewFromInt(20000)}
	trade := weightedTrade()
	trade.Currency = "EUR"

	err := newExecutor(tr, &fakePricer{}, ind, &fakeStore{}, &fakeBroadcaster{}).Execute(context.Background(), trade)
	require.NoError(t, err)

	require.Zero(t, ind.calls)
	require.True(t, tr.gotQuote.Equal(decimal.NewFromInt(100)))
}

func TestExecutePersistenceFailureIsNotFatal(t *testing.T) {
	tr := &fakeTrader{order: testOrder(), freeBalance: decimal.NewFromInt(10000)}
	store := &fakeStore{err: errors.New("disk full")}
	notify := &fakeBroadcaster{}
	trade := domain.TradeSpec{Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100)}

	err := newExecutor(tr, &fakePricer{}, &fakeIndicator{}, store, notify).Execute(context.Background(), trade)
	require.NoError(t, err)
	require.Equal(t, []string{notifier.SubjectOrder}, notify.subjects)
}
