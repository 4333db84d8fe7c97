package pricefeed

import (
	"time"

	"arbwatch/internal/application/port"

	"github.com/rs/zerolog/log"
)

// Options 创建行情连接所需参数
type Options struct {
	WsURL          string
	ReconnectDelay time.Duration
	Quote          string // 计价币种后缀，为空表示配置里已是完整交易对
}

type Factory func(opts Options) port.PriceFeed

// registry maps exchange names to their respective price feed factories
var registry = make(map[string]Factory)

// Register 由各交易所包的 init() 调用
func Register(exchangeName string, factory Factory) {
	if factory == nil {
		log.Warn().Str("exchange", exchangeName).Msg("invalid price feed factory")
		return
	}
	if _, exists := registry[exchangeName]; exists {
		log.Warn().Str("exchange", exchangeName).Msg("price feed factory already registered, overwriting")
	}
	registry[exchangeName] = factory
}

// Get 获取已注册的工厂
func Get(exchangeName string) (Factory, bool) {
	factory, ok := registry[exchangeName]
	return factory, ok
}
