package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultMinSpreadBps = 5.0

type Config struct {
	App struct {
		LogLevel        string   `toml:"log_level"`
		ReconnectDelay  Duration `toml:"reconnect_delay"`  // 断线重连固定延迟
		PublishInterval Duration `toml:"publish_interval"` // /ws 推送间隔
		PublishBatch    int      `toml:"publish_batch"`    // /ws 每次推送条数
		StatusEvery     Duration `toml:"status_every"`     // 行情快照日志间隔，0 关闭
	} `toml:"app"`

	Symbols struct {
		List  []string `toml:"list"`
		Quote string   `toml:"quote"` // 可选：list 里写币种时自动拼接计价币
	} `toml:"symbols"`

	Arbitrage struct {
		MinSpreadBps float64 `toml:"min_spread_bps"`
	} `toml:"arbitrage"`

	Retention struct {
		MaxSignals int `toml:"max_signals"`
	} `toml:"retention"`

	Exchange struct {
		Binance struct {
			Enabled bool   `toml:"enabled"`
			WsURL   string `toml:"ws_url"`
		} `toml:"binance"`

		Bybit struct {
			Enabled bool   `toml:"enabled"`
			WsURL   string `toml:"ws_url"`
		} `toml:"bybit"`
	} `toml:"exchange"`

	Storage struct {
		Driver string `toml:"driver"` // sqlite | postgres | memory

		// MirrorQuotes 每个 tick 写最新价：SQL 的 prices/latest_prices 表，redis 启用时再写 hash
		MirrorQuotes bool `toml:"mirror_quotes"`

		SQLite struct {
			Path string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			DSN string `toml:"dsn"`
		} `toml:"postgres"`

		Redis struct {
			Enabled       bool   `toml:"enabled"`
			Addr          string `toml:"addr"`
			Password      string `toml:"password"`
			DB            int    `toml:"db"`
			Prefix        string `toml:"prefix"`
			SignalStream  string `toml:"signal_stream"`
			SignalChannel string `toml:"signal_channel"`
			TTLSeconds    int    `toml:"ttl_seconds"`
		} `toml:"redis"`
	} `toml:"storage"`

	Notify struct {
		TelegramToken     string `toml:"telegram_token"`
		TelegramChatID    string `toml:"telegram_chat_id"`
		DiscordWebhookURL string `toml:"discord_webhook_url"`
	} `toml:"notify"`

	Server struct {
		Enabled      bool     `toml:"enabled"`
		Addr         string   `toml:"addr"`
		CORSOrigins  []string `toml:"cors_origins"`
		DefaultLimit int      `toml:"default_limit"`
		MaxLimit     int      `toml:"max_limit"`
	} `toml:"server"`
}

// Duration 支持 "3s" / "500ms" 形式的 TOML 字段
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(strings.TrimSpace(string(text)))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load 读取 TOML（path 为空时只用环境变量），然后 .env 与 ARBWATCH_* 覆盖，最后补默认值并校验
func Load(path string) (*Config, error) {
	var cfg Config
	// 0 是合法阈值，默认值只能在解码前给
	cfg.Arbitrage.MinSpreadBps = DefaultMinSpreadBps
	if strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.ReconnectDelay.Duration <= 0 {
		cfg.App.ReconnectDelay.Duration = 3 * time.Second
	}
	if cfg.App.PublishInterval.Duration <= 0 {
		cfg.App.PublishInterval.Duration = 2 * time.Second
	}
	if cfg.App.PublishBatch <= 0 {
		cfg.App.PublishBatch = 50
	}
	if cfg.Retention.MaxSignals <= 0 {
		cfg.Retention.MaxSignals = 200
	}

	if cfg.Exchange.Binance.WsURL == "" {
		cfg.Exchange.Binance.WsURL = "wss://stream.binance.com:9443"
	}
	if cfg.Exchange.Bybit.WsURL == "" {
		cfg.Exchange.Bybit.WsURL = "wss://stream.bybit.com/v5/public/spot"
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "./data/arbwatch.db"
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "arbwatch"
	}
	if cfg.Storage.Redis.SignalStream == "" {
		cfg.Storage.Redis.SignalStream = "signals"
	}
	if cfg.Storage.Redis.SignalChannel == "" {
		cfg.Storage.Redis.SignalChannel = "signals:pub"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.DefaultLimit <= 0 {
		cfg.Server.DefaultLimit = 100
	}
	if cfg.Server.MaxLimit <= 0 {
		cfg.Server.MaxLimit = 1000
	}
}

func validate(cfg *Config) error {
	cfg.Symbols.Quote = strings.ToUpper(strings.TrimSpace(cfg.Symbols.Quote))
	cfg.Symbols.List = normalizeSymbols(cfg.Symbols.List, cfg.Symbols.Quote)
	if len(cfg.Symbols.List) == 0 {
		return errors.New("symbols.list is empty")
	}

	if cfg.Arbitrage.MinSpreadBps < 0 {
		return fmt.Errorf("arbitrage.min_spread_bps must be >= 0, got %v", cfg.Arbitrage.MinSpreadBps)
	}

	if cfg.Exchange.Binance.Enabled && strings.TrimSpace(cfg.Exchange.Binance.WsURL) == "" {
		return errors.New("exchange.binance.ws_url empty but enabled")
	}
	if cfg.Exchange.Bybit.Enabled && strings.TrimSpace(cfg.Exchange.Bybit.WsURL) == "" {
		return errors.New("exchange.bybit.ws_url empty but enabled")
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch cfg.Storage.Driver {
	case "sqlite", "memory":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn empty but driver is postgres")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", cfg.Storage.Driver)
	}

	if cfg.Server.DefaultLimit > cfg.Server.MaxLimit {
		cfg.Server.DefaultLimit = cfg.Server.MaxLimit
	}
	return nil
}

// normalizeSymbols 大写、去重；quote 非空时把币种补成交易对（BTC -> BTCUSDT）
func normalizeSymbols(in []string, quote string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if quote != "" && !strings.HasSuffix(u, quote) {
			u += quote
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
