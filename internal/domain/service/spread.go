package service

import "arbwatch/internal/domain/model"

// Candidate 一个方向的套利候选：在 Src 买入，在 Dst 卖出
type Candidate struct {
	Src      string
	SrcPrice float64
	Dst      string
	DstPrice float64
}

// Candidates 按固定优先级构造两个方向：binance->bybit 在前，bybit->binance 在后
func Candidates(binance, bybit float64) [2]Candidate {
	return [2]Candidate{
		{Src: model.ExchangeBinance, SrcPrice: binance, Dst: model.ExchangeBybit, DstPrice: bybit},
		{Src: model.ExchangeBybit, SrcPrice: bybit, Dst: model.ExchangeBinance, DstPrice: binance},
	}
}

// Valid 两边价格都必须为正
func (c Candidate) Valid() bool {
	return c.SrcPrice > 0 && c.DstPrice > 0
}

// SpreadBps 价差（基点）= (dst - src) / src * 10000，调用方保证 src > 0
func SpreadBps(src, dst float64) float64 {
	return (dst - src) / src * 10000.0
}

// Qualifies 价差达到阈值（含等于）
func Qualifies(spreadBps, threshold float64) bool {
	return spreadBps >= threshold
}
