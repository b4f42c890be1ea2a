package indicator

import (
	"context"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// KlineSMA computes the moving average locally from Binance klines.
// It is the fallback Source when no indicator API key is configured.
type KlineSMA struct {
	client   *binance.Client
	interval string
	period   int
}

// NewKlineSMA creates the local moving-average source.
func NewKlineSMA(client *binance.Client, interval string, period int) *KlineSMA {
	return &KlineSMA{client: client, interval: interval, period: period}
}

// MovingAverage fetches the last period closes and returns their simple
// moving average.
func (s *KlineSMA) MovingAverage(ctx context.Context, asset, currency string) (decimal.Decimal, error) {
	klines, err := s.client.NewKlinesService().
		Symbol(asset + currency).
		Interval(s.interval).
		Limit(s.period).
		Do(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetch klines for %s%s", asset, currency)
	}
	if len(klines) < s.period {
		return decimal.Zero, errors.Errorf("not enough klines for %s%s: need %d, got %d", asset, currency, s.period, len(klines))
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		price, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "parse close price at index %d", i)
		}
		closes[i] = price
	}

	return smaOf(closes, s.period)
}

// smaOf runs the closes through the indicator pipeline and returns the
// last SMA value.
func smaOf(closes []float64, period int) (decimal.Decimal, error) {
	if len(closes) < period {
		return decimal.Zero, errors.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
	if len(values) == 0 {
		return decimal.Zero, errors.New("sma computation produced no values")
	}

	return decimal.NewFromFloat(values[len(values)-1]), nil
}
