package port

import "context"

type Tick struct {
	Exchange string  // 交易所 "binance" "bybit"
	Symbol   string  // "BTCUSDT"，已规范为大写
	PriceStr string  // raw string
	PriceNum float64 // parsed float64
	Ts       int64   // unix ms（本地接收时间）
}

type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context, symbols []string) (<-chan Tick, error)
}
