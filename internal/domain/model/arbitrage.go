package model

import "time"

// 交易所标识（固定两家）
const (
	ExchangeBinance = "binance" // venue A
	ExchangeBybit   = "bybit"   // venue B
)

// Venues 固定的比较顺序：A 在前，B 在后
var Venues = [2]string{ExchangeBinance, ExchangeBybit}

// Quote 某交易所某交易对的最新成交价
type Quote struct {
	Price float64 `json:"price"`
}

// Signal 跨交易所价差信号，创建后不可修改
type Signal struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Src       string    `json:"src"` // 低价交易所（买入）
	Dst       string    `json:"dst"` // 高价交易所（卖出）
	SrcPrice  float64   `json:"src_price"`
	DstPrice  float64   `json:"dst_price"`
	SpreadBps float64   `json:"spread_bps"`
	CreatedAt time.Time `json:"created_at"`
}
