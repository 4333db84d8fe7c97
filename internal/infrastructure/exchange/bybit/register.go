package bybit

import (
	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
	"arbwatch/internal/infrastructure/pricefeed"
)

// init() 自动注册 Bybit 行情工厂
func init() {
	pricefeed.Register(model.ExchangeBybit, func(opts pricefeed.Options) port.PriceFeed {
		return NewTickerFeed(opts.WsURL, opts.ReconnectDelay, opts.Quote)
	})
}
