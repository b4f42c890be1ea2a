// Package config loads the bot configuration from a YAML file with
// environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vutang50/binance-dca-bot/internal/domain"
)

const (
	defaultIndicatorInterval   = "1w"
	defaultIndicatorPeriod     = 200
	defaultIndicatorAttempts   = 2
	defaultIndicatorRetryDelay = time.Second
	defaultBalanceAlertFactor  = 5
	defaultHealthPort          = 8080
	defaultOrderLogDir         = "./wal/orders"
	defaultTaapiBaseURL        = "https://api.taapi.io"
)

// Config holds all application configuration.
type Config struct {
	Binance struct {
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
	} `yaml:"binance"`
	Indicator struct {
		TaapiKey    string        `yaml:"taapi_key"`
		BaseURL     string        `yaml:"base_url"`
		Interval    string        `yaml:"interval"`
		Period      int           `yaml:"period"`
		MaxAttempts int           `yaml:"max_attempts"`
		RetryDelay  time.Duration `yaml:"retry_delay"`
	} `yaml:"indicator"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Mail struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		To       string `yaml:"to"`
	} `yaml:"mail"`
	OrderLogDir        string          `yaml:"order_log_dir"`
	BalanceAlertFactor decimal.Decimal `yaml:"-"`
	HealthPort         int             `yaml:"health_port"`
	Debug              bool            `yaml:"debug"`
	Trades             []TradeConfig   `yaml:"trades"`

	BalanceAlertFactorStr string `yaml:"balance_alert_factor,omitempty"`
}

// TradeConfig is the YAML shape of a single trade. Amounts are strings so
// they survive the trip into decimal.Decimal without float rounding.
type TradeConfig struct {
	Asset         string        `yaml:"asset"`
	Currency      string        `yaml:"currency"`
	Quantity      string        `yaml:"quantity,omitempty"`
	QuoteOrderQty string        `yaml:"quote_order_qty,omitempty"`
	Schedule      string        `yaml:"schedule,omitempty"`
	Weight        *WeightConfig `yaml:"weight,omitempty"`
}

// WeightConfig is the YAML shape of the dynamic sizing parameters.
type WeightConfig struct {
	MaxATHFactor     string `yaml:"max_ath_factor"`
	ATH              string `yaml:"ath"`
	MayerMultipleAvg string `yaml:"mayer_multiple_avg"`
	MayerMultipleMax string `yaml:"mayer_multiple_max"`
}

// Load reads the config file at path, applies environment overrides and
// fills defaults. A missing file is fine as long as the environment
// provides everything needed.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.BalanceAlertFactorStr == "" {
		cfg.BalanceAlertFactor = decimal.NewFromInt(defaultBalanceAlertFactor)
	} else {
		factor, err := decimal.NewFromString(cfg.BalanceAlertFactorStr)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'balance_alert_factor' param in yaml config: %w", err)
		}
		cfg.BalanceAlertFactor = factor
	}

	if cfg.Indicator.BaseURL == "" {
		cfg.Indicator.BaseURL = defaultTaapiBaseURL
	}
	if cfg.Indicator.Interval == "" {
		cfg.Indicator.Interval = defaultIndicatorInterval
	}
	if cfg.Indicator.Period == 0 {
		cfg.Indicator.Period = defaultIndicatorPeriod
	}
	if cfg.Indicator.MaxAttempts == 0 {
		cfg.Indicator.MaxAttempts = defaultIndicatorAttempts
	}
	if cfg.Indicator.RetryDelay == 0 {
		cfg.Indicator.RetryDelay = defaultIndicatorRetryDelay
	}
	if cfg.OrderLogDir == "" {
		cfg.OrderLogDir = defaultOrderLogDir
	}
	if cfg.HealthPort == 0 {
		cfg.HealthPort = defaultHealthPort
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		cfg.Binance.APISecret = v
	}
	if v := os.Getenv("TAAPI_API_KEY"); v != "" {
		cfg.Indicator.TaapiKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
}

// TradeSpecs converts the YAML trade entries into domain specs. Unparsable
// amounts are operator typos and abort loading, same as any other config
// syntax error; structural validity of each trade is the scheduler's call.
func (c *Config) TradeSpecs() ([]domain.TradeSpec, error) {
	specs := make([]domain.TradeSpec, 0, len(c.Trades))
	for i, tc := range c.Trades {
		spec := domain.TradeSpec{
			Asset:    tc.Asset,
			Currency: tc.Currency,
			Schedule: tc.Schedule,
		}

		if tc.Quantity != "" {
			qty, err := decimal.NewFromString(tc.Quantity)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'quantity' in trade %d: %w", i, err)
			}
			spec.Quantity = qty
		}
		if tc.QuoteOrderQty != "" {
			spend, err := decimal.NewFromString(tc.QuoteOrderQty)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'quote_order_qty' in trade %d: %w", i, err)
			}
			spec.QuoteOrderQty = spend
		}

		if tc.Weight != nil {
			weight, err := tc.Weight.toSpec()
			if err != nil {
				return nil, fmt.Errorf("incorrect 'weight' in trade %d: %w", i, err)
			}
			spec.Weight = weight
		}

		specs = append(specs, spec)
	}
	return specs, nil
}

func (w *WeightConfig) toSpec() (*domain.WeightSpec, error) {
	maxATHFactor, err := decimal.NewFromString(w.MaxATHFactor)
	if err != nil {
		return nil, fmt.Errorf("max_ath_factor: %w", err)
	}
	ath, err := decimal.NewFromString(w.ATH)
	if err != nil {
		return nil, fmt.Errorf("ath: %w", err)
	}
	avg, err := decimal.NewFromString(w.MayerMultipleAvg)
	if err != nil {
		return nil, fmt.Errorf("mayer_multiple_avg: %w", err)
	}
	max, err := decimal.NewFromString(w.MayerMultipleMax)
	if err != nil {
		return nil, fmt.Errorf("mayer_multiple_max: %w", err)
	}
	return &domain.WeightSpec{
		MaxATHFactor:     maxATHFactor,
		ATH:              ath,
		MayerMultipleAvg: avg,
		MayerMultipleMax: max,
	}, nil
}
