package exchange

import (
	"strings"
)

// CommonSymbolConverter 币种 -> 交易对
type CommonSymbolConverter struct {
	suffix string
}

// NewCommonSymbolConverter 创建通用符号转换器；suffix 为空时原样返回（配置里直接写交易对）
func NewCommonSymbolConverter(suffix string) *CommonSymbolConverter {
	return &CommonSymbolConverter{suffix: strings.ToUpper(strings.TrimSpace(suffix))}
}

// Coin2Symbol 将币种转换为交易对
// 例: BTC -> BTCUSDT, BTCUSDT -> BTCUSDT
func (c *CommonSymbolConverter) Coin2Symbol(coin string) string {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return ""
	}

	// 如果已经包含后缀，直接返回
	if strings.HasSuffix(coin, c.suffix) {
		return coin
	}
	return coin + c.suffix
}

// Coins2Symbols 批量转换并去掉空值
func (c *CommonSymbolConverter) Coins2Symbols(coins []string) []string {
	out := make([]string, 0, len(coins))
	for _, coin := range coins {
		if s := c.Coin2Symbol(coin); s != "" {
			out = append(out, s)
		}
	}
	return out
}
