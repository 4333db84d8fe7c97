package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides 非空的 ARBWATCH_* 环境变量覆盖配置文件（部署时注入密钥用）
func applyEnvOverrides(cfg *Config) {
	// app
	setStr(&cfg.App.LogLevel, "ARBWATCH_LOG_LEVEL")
	setDuration(&cfg.App.ReconnectDelay, "ARBWATCH_RECONNECT_DELAY")
	setDuration(&cfg.App.PublishInterval, "ARBWATCH_PUBLISH_INTERVAL")
	setInt(&cfg.App.PublishBatch, "ARBWATCH_PUBLISH_BATCH")
	setDuration(&cfg.App.StatusEvery, "ARBWATCH_STATUS_EVERY")

	// symbols / arbitrage / retention
	setStringSlice(&cfg.Symbols.List, "ARBWATCH_SYMBOLS")
	setStr(&cfg.Symbols.Quote, "ARBWATCH_SYMBOLS_QUOTE")
	setFloat64(&cfg.Arbitrage.MinSpreadBps, "ARBWATCH_MIN_SPREAD_BPS")
	setInt(&cfg.Retention.MaxSignals, "ARBWATCH_MAX_SIGNALS")

	// exchange
	setBool(&cfg.Exchange.Binance.Enabled, "ARBWATCH_BINANCE_ENABLED")
	setStr(&cfg.Exchange.Binance.WsURL, "ARBWATCH_BINANCE_WS_URL")
	setBool(&cfg.Exchange.Bybit.Enabled, "ARBWATCH_BYBIT_ENABLED")
	setStr(&cfg.Exchange.Bybit.WsURL, "ARBWATCH_BYBIT_WS_URL")

	// storage
	setStr(&cfg.Storage.Driver, "ARBWATCH_STORAGE_DRIVER")
	setStr(&cfg.Storage.SQLite.Path, "ARBWATCH_SQLITE_PATH")
	setStr(&cfg.Storage.Postgres.DSN, "ARBWATCH_POSTGRES_DSN")
	setBool(&cfg.Storage.MirrorQuotes, "ARBWATCH_MIRROR_QUOTES")
	setBool(&cfg.Storage.Redis.Enabled, "ARBWATCH_REDIS_ENABLED")
	setStr(&cfg.Storage.Redis.Addr, "ARBWATCH_REDIS_ADDR")
	setStr(&cfg.Storage.Redis.Password, "ARBWATCH_REDIS_PASSWORD")
	setInt(&cfg.Storage.Redis.DB, "ARBWATCH_REDIS_DB")

	// notify
	setStr(&cfg.Notify.TelegramToken, "ARBWATCH_TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBWATCH_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBWATCH_DISCORD_WEBHOOK_URL")

	// server
	setBool(&cfg.Server.Enabled, "ARBWATCH_SERVER_ENABLED")
	setStr(&cfg.Server.Addr, "ARBWATCH_SERVER_ADDR")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBWATCH_CORS_ORIGINS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
