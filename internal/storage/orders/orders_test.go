package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

func testOrder(id int64) domain.OrderResult {
	return domain.OrderResult{
		OrderID:            id,
		ClientOrderID:      "dca-test",
		Symbol:             "BTCUSDT",
		ExecutedQty:        decimal.NewFromFloat(0.002),
		CumulativeQuoteQty: decimal.NewFromInt(100),
		TransactTime:       time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC),
		Fills: []domain.Fill{
			{Price: decimal.NewFromInt(50000), Quantity: decimal.NewFromFloat(0.002), Commission: decimal.NewFromFloat(0.1), CommissionAsset: "USDT"},
		},
	}
}

func TestWALStoreSaveAndReplay(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(testOrder(1)))
	require.NoError(t, store.Save(testOrder(2)))

	records, err := store.Orders()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0].Order
	require.EqualValues(t, 1, first.OrderID)
	require.Equal(t, "BTCUSDT", first.Symbol)
	require.True(t, first.CumulativeQuoteQty.Equal(decimal.NewFromInt(100)))
	require.Len(t, first.Fills, 1)
	require.Equal(t, "USDT", first.Fills[0].CommissionAsset)
}

func TestWALStoreEmpty(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	records, err := store.Orders()
	require.NoError(t, err)
	require.Empty(t, records)
}
