package internal

import (
	"context"

	binance "github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vutang50/binance-dca-bot/config"
	"github.com/vutang50/binance-dca-bot/internal/domain"
	"github.com/vutang50/binance-dca-bot/internal/services/executor"
	"github.com/vutang50/binance-dca-bot/internal/services/indicator"
	"github.com/vutang50/binance-dca-bot/internal/services/notifier"
	"github.com/vutang50/binance-dca-bot/internal/services/pricer"
	"github.com/vutang50/binance-dca-bot/internal/services/scheduler"
	"github.com/vutang50/binance-dca-bot/internal/services/trader"
	"github.com/vutang50/binance-dca-bot/internal/storage/orders"
)

type accountReader interface {
	AccountInfo(ctx context.Context) (bool, []domain.BalanceSnapshot, error)
}

type tradeScheduler interface {
	Start(ctx context.Context, trades []domain.TradeSpec)
	Stop()
}

// Bot is a fully assembled trading bot: all configured trades validated
// and handed to the scheduler, ready to Run.
type Bot struct {
	trader    accountReader
	scheduler tradeScheduler
	store     orders.Store
	l         *zap.Logger
}

// NewBot wires the full service graph from configuration. The Binance
// client is the single point of exchange access shared by the trader,
// pricer and the kline-based indicator fallback.
func NewBot(conf *config.Config, logger *zap.Logger) (*Bot, error) {
	client := binance.NewClient(conf.Binance.APIKey, conf.Binance.APISecret)

	binanceTrader := trader.NewBinanceTrader(client)
	binancePricer := pricer.NewBinancePricer(client)

	var source indicator.Source
	if conf.Indicator.TaapiKey != "" {
		source = indicator.NewTaapiClient(
			conf.Indicator.TaapiKey,
			conf.Indicator.BaseURL,
			conf.Indicator.Interval,
			conf.Indicator.Period,
			conf.Indicator.MaxAttempts,
			conf.Indicator.RetryDelay,
			logger,
		)
	} else {
		logger.Info("no taapi key configured, computing moving averages from klines",
			zap.String("interval", conf.Indicator.Interval),
			zap.Int("period", conf.Indicator.Period))
		source = indicator.NewKlineSMA(client, conf.Indicator.Interval, conf.Indicator.Period)
	}

	var channels []notifier.Notifier
	if conf.Telegram.BotToken != "" && conf.Telegram.ChatID != "" {
		channels = append(channels, notifier.NewTelegram(conf.Telegram.BotToken, conf.Telegram.ChatID))
	}
	if conf.Mail.Host != "" && conf.Mail.To != "" {
		channels = append(channels, notifier.NewMail(
			conf.Mail.Host, conf.Mail.Port,
			conf.Mail.Username, conf.Mail.Password,
			conf.Mail.From, conf.Mail.To,
		))
	}
	broadcast := notifier.NewBroadcaster(logger, channels...)

	var store orders.Store
	store, err := orders.NewWALStore(conf.OrderLogDir)
	if err != nil {
		logger.Warn("order log unavailable, orders will not be persisted",
			zap.String("dir", conf.OrderLogDir), zap.Error(err))
		store = orders.NoopStore{}
	}

	exec := executor.New(binanceTrader, binancePricer, source, store, broadcast,
		conf.BalanceAlertFactor, logger)

	return &Bot{
		trader:    binanceTrader,
		scheduler: scheduler.New(exec, broadcast, logger),
		store:     store,
		l:         logger,
	}, nil
}

// Run validates credentials against the exchange, fires the immediate
// trades, starts the timers and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, conf *config.Config) error {
	trades, err := conf.TradeSpecs()
	if err != nil {
		return errors.Wrap(err, "parse trades")
	}

	trades, err = scheduler.Validate(b.l, conf.Binance.APIKey, conf.Binance.APISecret, trades)
	if err != nil {
		return errors.Wrap(err, "validate trades")
	}

	canTrade, balances, err := b.trader.AccountInfo(ctx)
	if err != nil {
		if trader.IsCredentialError(err) {
			return errors.Wrap(err, "binance rejected the API credentials")
		}
		return errors.Wrap(err, "fetch account info")
	}
	if !canTrade {
		return errors.New("binance account is not allowed to trade")
	}
	for _, bal := range balances {
		b.l.Info("account balance",
			zap.String("asset", bal.Asset),
			zap.String("free", bal.Free.String()),
			zap.String("locked", bal.Locked.String()))
	}

	b.scheduler.Start(ctx, trades)

	<-ctx.Done()
	b.l.Info("shutting down")

	// Stop waits for running firings, so the order log must stay open
	// until it returns: a firing completing during teardown still saves.
	b.scheduler.Stop()
	if err := b.store.Close(); err != nil {
		b.l.Warn("closing order log", zap.Error(err))
	}
	return nil
}
