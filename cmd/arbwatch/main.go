package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"arbwatch/internal/infrastructure/config"
	"arbwatch/internal/infrastructure/logger"
	"arbwatch/internal/infrastructure/svc"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml (empty: env only)")
	flag.Parse()

	logger.Setup("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init failed")
	}
	defer sc.Close()

	log.Info().
		Str("config", *configPath).
		Int("symbols", len(cfg.Symbols.List)).
		Float64("min_spread_bps", cfg.Arbitrage.MinSpreadBps).
		Dur("reconnect_delay", cfg.App.ReconnectDelay.Duration).
		Msg("arbwatch started")

	if err := sc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("arbwatch exited")
		return
	}
	log.Info().Msg("arbwatch stopped")
}
