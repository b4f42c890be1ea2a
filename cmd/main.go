// Command binance-dca-bot buys crypto on a schedule. Each configured trade
// fires on its own cron timer (or once at startup), with order sizes
// optionally weighted by the Mayer Multiple and distance from the
// all-time high.
//
// Usage:
//
//	binance-dca-bot --config config.yaml
//	binance-dca-bot --setup
//
// Required environment variables (or config fields):
//
//	BINANCE_API_KEY, BINANCE_API_SECRET
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vutang50/binance-dca-bot/config"
	"github.com/vutang50/binance-dca-bot/internal"
	"github.com/vutang50/binance-dca-bot/internal/health"
	"github.com/vutang50/binance-dca-bot/internal/setup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard and exit")
	flag.Parse()

	if *runSetup {
		if err := setup.RunWizard(); err != nil {
			log.Fatal(err)
		}
		return
	}

	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health.Start(ctx, conf.HealthPort, logger)

	bot, err := internal.NewBot(conf, logger)
	if err != nil {
		logger.Fatal("failed to assemble bot", zap.Error(err))
	}

	if err := bot.Run(ctx, conf); err != nil {
		logger.Fatal("bot stopped", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
