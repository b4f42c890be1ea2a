package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTradeSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		trade   TradeSpec
		wantErr error
		skip    bool
	}{
		{
			name:  "quote order qty only",
			trade: TradeSpec{Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100)},
		},
		{
			name:  "quantity only",
			trade: TradeSpec{Asset: "ETH", Currency: "USDT", Quantity: decimal.NewFromFloat(0.05)},
		},
		{
			name: "both size fields set",
			trade: TradeSpec{
				Asset: "BTC", Currency: "USDT",
				Quantity:      decimal.NewFromFloat(0.001),
				QuoteOrderQty: decimal.NewFromInt(100),
			},
			wantErr: ErrConflictingSizeSpec,
		},
		{
			name:  "missing asset",
			trade: TradeSpec{Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100)},
			skip:  true,
		},
		{
			name:  "missing currency",
			trade: TradeSpec{Asset: "BTC", QuoteOrderQty: decimal.NewFromInt(100)},
			skip:  true,
		},
		{
			name:  "neither size field set",
			trade: TradeSpec{Asset: "BTC", Currency: "USDT"},
			skip:  true,
		},
		{
			name: "weight with equal mayer avg and max",
			trade: TradeSpec{
				Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100),
				Weight: &WeightSpec{
					MaxATHFactor:     decimal.NewFromInt(1),
					ATH:              decimal.NewFromInt(50000),
					MayerMultipleAvg: decimal.NewFromFloat(2.4),
					MayerMultipleMax: decimal.NewFromFloat(2.4),
				},
			},
			wantErr: ErrInvalidWeightSpec,
		},
		{
			name: "weight with non-positive ath",
			trade: TradeSpec{
				Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100),
				Weight: &WeightSpec{
					MaxATHFactor:     decimal.NewFromInt(1),
					MayerMultipleAvg: decimal.NewFromFloat(1.2),
					MayerMultipleMax: decimal.NewFromFloat(2.4),
				},
			},
			wantErr: ErrInvalidWeightSpec,
		},
		{
			name: "valid weight",
			trade: TradeSpec{
				Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100),
				Weight: &WeightSpec{
					MaxATHFactor:     decimal.NewFromInt(1),
					ATH:              decimal.NewFromInt(50000),
					MayerMultipleAvg: decimal.NewFromFloat(1.2),
					MayerMultipleMax: decimal.NewFromFloat(2.4),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trade.Validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.skip:
				require.Error(t, err)
				require.NotErrorIs(t, err, ErrConflictingSizeSpec)
				require.NotErrorIs(t, err, ErrInvalidWeightSpec)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestTradeSpecString(t *testing.T) {
	quote := TradeSpec{Asset: "BTC", Currency: "USDT", QuoteOrderQty: decimal.NewFromInt(100)}
	require.Equal(t, "100 USDT worth of BTC", quote.String())

	fixed := TradeSpec{Asset: "ETH", Currency: "USDT", Quantity: decimal.NewFromFloat(0.05)}
	require.Equal(t, "0.05 ETH", fixed.String())
}

func TestOrderResultAveragePrice(t *testing.T) {
	order := OrderResult{
		ExecutedQty:        decimal.NewFromFloat(0.002),
		CumulativeQuoteQty: decimal.NewFromInt(100),
	}
	require.True(t, order.AveragePrice().Equal(decimal.NewFromInt(50000)))

	empty := OrderResult{}
	require.True(t, empty.AveragePrice().IsZero())
}
