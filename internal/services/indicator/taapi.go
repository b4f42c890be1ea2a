package indicator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaapiClient fetches a moving average from the taapi.io REST API.
// Transient failures, whether transport-level or reported in the response
// body, are retried a small bounded number of times with a delay that
// grows with the attempt count.
type TaapiClient struct {
	apiKey      string
	baseURL     string
	interval    string
	period      int
	maxAttempts int
	retryDelay  time.Duration
	client      *http.Client
	logger      *zap.Logger
}

// NewTaapiClient creates the adapter. interval and period select the
// lookback window, e.g. "1w" and 200 for a 200-week moving average.
func NewTaapiClient(apiKey, baseURL, interval string, period, maxAttempts int, retryDelay time.Duration, logger *zap.Logger) *TaapiClient {
	return &TaapiClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		interval:    interval,
		period:      period,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

// MovingAverage fetches the indicator value, retrying recoverable errors.
// Exhausting all attempts returns an error; the caller decides what a
// missing indicator means for the firing.
func (c *TaapiClient) MovingAverage(ctx context.Context, asset, currency string) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		value, err := c.fetch(ctx, asset, currency)
		if err == nil {
			return value, nil
		}
		lastErr = err
		c.logger.Warn("moving average fetch failed",
			zap.String("asset", asset),
			zap.String("currency", currency),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}
	return decimal.Zero, errors.Wrapf(lastErr, "moving average unavailable after %d attempts", c.maxAttempts)
}

func (c *TaapiClient) fetch(ctx context.Context, asset, currency string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("secret", c.apiKey)
	query.Set("exchange", "binance")
	query.Set("symbol", fmt.Sprintf("%s/%s", asset, currency))
	query.Set("interval", c.interval)
	query.Set("period", fmt.Sprintf("%d", c.period))

	reqURL := fmt.Sprintf("%s/ma?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "build indicator request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "indicator request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "read indicator response")
	}

	var payload struct {
		Value json.Number `json:"value"`
		Error string      `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse indicator response (status %d)", resp.StatusCode)
	}
	if payload.Error != "" {
		return decimal.Zero, fmt.Errorf("indicator API error: %s", payload.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("indicator API status %d: %s", resp.StatusCode, string(body))
	}

	value, err := decimal.NewFromString(payload.Value.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse indicator value %q", payload.Value.String())
	}
	return value, nil
}
