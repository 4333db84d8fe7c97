package svc

import (
	"errors"
	"path/filepath"
	"testing"

	"arbwatch/internal/infrastructure/config"
)

func baseConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Symbols.List = []string{"BTCUSDT"}
	cfg.Arbitrage.MinSpreadBps = 5
	cfg.Retention.MaxSignals = 10
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "svc.db")
	cfg.Exchange.Binance.WsURL = "wss://stream.binance.com:9443"
	cfg.Exchange.Bybit.WsURL = "wss://stream.bybit.com/v5/public/spot"
	return cfg
}

func TestNewRequiresFeeds(t *testing.T) {
	_, err := New(baseConfig(t))
	if !errors.Is(err, ErrNoFeedsEnabled) {
		t.Fatalf("expected ErrNoFeedsEnabled, got %v", err)
	}
}

func TestNewStorageFailure(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Driver = "mongo"
	_, err := New(cfg)
	if !errors.Is(err, ErrStorageInitFailed) {
		t.Fatalf("expected ErrStorageInitFailed, got %v", err)
	}
}

func TestNewWiresComponents(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Exchange.Binance.Enabled = true
	cfg.Exchange.Bybit.Enabled = true
	cfg.Server.Enabled = true
	cfg.Server.Addr = "127.0.0.1:0"

	sc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sc.Close()

	if sc.Monitor() == nil || sc.App() == nil {
		t.Fatal("expected monitor and app container")
	}
	if sc.App().QuoteStore() != sc.Monitor().Store() {
		t.Fatal("monitor and detector must share one QuoteStore")
	}

	st := sc.status()
	if _, ok := st["feeds"]; !ok {
		t.Fatalf("expected feeds in status: %v", st)
	}
	if st["signals"] != 0 {
		t.Fatalf("expected 0 signals, got %v", st["signals"])
	}
}
