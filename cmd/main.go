// Command usdbars rolls a ledger of currency deposits and withdrawals up into
// per-user min/max/average USD balance bars for several time windows.
//
// Usage:
//
//	usdbars --config config.yaml
//	usdbars --market market_data.csv --users user_data.csv --out . --windows 1h=3600,1d=86400
//
// Optional environment variables (also read from .env):
//
//	USDBARS_OUTPUT_DIR, USDBARS_METRICS_FILE
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/vadiminshakov/usdbars/config"
	"github.com/vadiminshakov/usdbars/internal/app"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(conf.Debug)
	if err != nil {
		log.Fatal(err)
	}

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	if err := run(conf, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(conf config.Config, logger *zap.Logger) error {
	logger.Info("starting",
		zap.Strings("windows", conf.Windows.Names()),
		zap.Int("workers", conf.Workers),
		zap.String("output_dir", conf.OutputDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := app.NewRunner(conf).Run(ctx, logger)
	return err
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
