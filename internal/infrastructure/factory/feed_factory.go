package factory

import (
	"arbwatch/internal/application/usecase/monitor"
	"arbwatch/internal/domain/model"
	"arbwatch/internal/infrastructure/config"
	"arbwatch/internal/infrastructure/pricefeed"

	// 交易所包在 init() 中向 pricefeed 注册工厂
	_ "arbwatch/internal/infrastructure/exchange/binance"
	_ "arbwatch/internal/infrastructure/exchange/bybit"

	"github.com/rs/zerolog/log"
)

// EnabledExchanges 启用的交易所 -> ws 地址
func EnabledExchanges(cfg *config.Config) map[string]string {
	out := make(map[string]string, 2)
	if cfg.Exchange.Binance.Enabled {
		out[model.ExchangeBinance] = cfg.Exchange.Binance.WsURL
	}
	if cfg.Exchange.Bybit.Enabled {
		out[model.ExchangeBybit] = cfg.Exchange.Bybit.WsURL
	}
	return out
}

// NewPriceFeeds 使用已注册的工厂函数初始化启用的交易所行情
func NewPriceFeeds(cfg *config.Config) []monitor.PriceFeed {
	var feeds []monitor.PriceFeed

	enabled := EnabledExchanges(cfg)
	for _, exchangeName := range model.Venues {
		wsURL, ok := enabled[exchangeName]
		if !ok {
			continue
		}

		factory, ok := pricefeed.Get(exchangeName)
		if !ok {
			log.Warn().Str("exchange", exchangeName).Msg("price feed not registered")
			continue
		}

		feed := factory(pricefeed.Options{
			WsURL:          wsURL,
			ReconnectDelay: cfg.App.ReconnectDelay.Duration,
			Quote:          cfg.Symbols.Quote,
		})
		feeds = append(feeds, feed)
		log.Info().Str("exchange", exchangeName).Str("ws_url", wsURL).Msg("feed initialized")
	}

	return feeds
}
