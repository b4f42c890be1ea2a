package weight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

func defaultWeight() domain.WeightSpec {
	return domain.WeightSpec{
		MaxATHFactor:     decimal.NewFromFloat(1.0),
		ATH:              decimal.NewFromInt(50000),
		MayerMultipleAvg: decimal.NewFromFloat(1.2),
		MayerMultipleMax: decimal.NewFromFloat(2.4),
	}
}

func TestAdjustedSpend(t *testing.T) {
	tests := []struct {
		name          string
		base          decimal.Decimal
		movingAverage decimal.Decimal
		currentPrice  decimal.Decimal
		expected      string
	}{
		{
			// mayerMultiple=1.25, mayerWeightConstant=2,
			// currentWeightMultiple≈0.4792, mayerFactor≈0.9583, athFactor=0.25
			name:          "reference fixture",
			base:          decimal.NewFromInt(100),
			movingAverage: decimal.NewFromInt(20000),
			currentPrice:  decimal.NewFromInt(25000),
			expected:      "23.96",
		},
		{
			name:          "price at moving average",
			base:          decimal.NewFromInt(100),
			movingAverage: decimal.NewFromInt(25000),
			currentPrice:  decimal.NewFromInt(25000),
			expected:      "29.17",
		},
		{
			name:          "mayer multiple above configured max clamps to zero",
			base:          decimal.NewFromInt(100),
			movingAverage: decimal.NewFromInt(20000),
			currentPrice:  decimal.NewFromInt(50000),
			expected:      "0",
		},
		{
			name:          "price at ath anchor zeroes the ath factor",
			base:          decimal.NewFromInt(100),
			movingAverage: decimal.NewFromInt(50000),
			currentPrice:  decimal.NewFromInt(50000),
			expected:      "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustedSpend(tt.base, defaultWeight(), tt.movingAverage, tt.currentPrice)
			require.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestAdjustedSpendIsDeterministic(t *testing.T) {
	base := decimal.NewFromInt(100)
	ma := decimal.NewFromInt(20000)
	price := decimal.NewFromInt(25000)

	first := AdjustedSpend(base, defaultWeight(), ma, price)
	second := AdjustedSpend(base, defaultWeight(), ma, price)
	require.True(t, first.Equal(second))
}

func TestAdjustedSpendNeverNegative(t *testing.T) {
	base := decimal.NewFromInt(100)
	w := defaultWeight()

	for _, price := range []int64{1000, 10000, 24000, 48001, 60000, 100000, 500000} {
		got := AdjustedSpend(base, w, decimal.NewFromInt(20000), decimal.NewFromInt(price))
		require.False(t, got.IsNegative(), "price %d produced negative spend %s", price, got.String())
	}
}

func TestSupportsWeighting(t *testing.T) {
	require.True(t, SupportsWeighting("USDT"))
	require.True(t, SupportsWeighting("usdt"))
	require.False(t, SupportsWeighting("EUR"))
	require.False(t, SupportsWeighting("BTC"))
	require.False(t, SupportsWeighting(""))
}
