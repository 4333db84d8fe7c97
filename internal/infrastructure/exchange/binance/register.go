package binance

import (
	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
	"arbwatch/internal/infrastructure/pricefeed"
)

// init() 自动注册 Binance 行情工厂
func init() {
	pricefeed.Register(model.ExchangeBinance, func(opts pricefeed.Options) port.PriceFeed {
		return NewTickerFeed(opts.WsURL, opts.ReconnectDelay, opts.Quote)
	})
}
