package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"arbwatch/internal/domain/model"
	dsvc "arbwatch/internal/domain/service"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

func colorize(s, c string, on bool) string {
	if !on {
		return s
	}
	return c + s + ansiReset
}

// Formatter 把 QuoteStore 渲染成一行状态：每个交易对两边价格 + 较大方向的价差
type Formatter struct {
	Threshold float64
	Color     bool
}

func NewFormatter(threshold float64, color bool) *Formatter {
	return &Formatter{Threshold: threshold, Color: color}
}

func (f *Formatter) Render(snap map[string]map[string]model.Quote, symbols []string) string {
	var sb strings.Builder
	sb.WriteString(colorize("[ARB] ", ansiDim, f.Color))

	for i, sym := range symbols {
		if i > 0 {
			sb.WriteString(colorize("  ||  ", ansiDim, f.Color))
		}

		b, bok := snap[model.ExchangeBinance][sym]
		y, yok := snap[model.ExchangeBybit][sym]

		sb.WriteString(sym)
		sb.WriteString(" B:")
		sb.WriteString(priceStr(b, bok))
		sb.WriteString(" Y:")
		sb.WriteString(priceStr(y, yok))
		sb.WriteString(" ")

		if !bok || !yok {
			sb.WriteString(colorize("Δ=--", ansiYellow, f.Color))
			continue
		}

		c, spread, ok := bestDirection(b.Price, y.Price)
		if !ok {
			sb.WriteString(colorize("Δ=--", ansiYellow, f.Color))
			continue
		}
		col := ansiYellow
		if dsvc.Qualifies(spread, f.Threshold) {
			col = ansiGreen
		} else if spread < 0 {
			col = ansiRed
		}
		sb.WriteString(colorize(fmt.Sprintf("Δ=%+.1fbps(%s→%s)", spread, short(c.Src), short(c.Dst)), col, f.Color))
	}
	return sb.String()
}

func priceStr(q model.Quote, ok bool) string {
	if !ok {
		return "--"
	}
	return strconv.FormatFloat(q.Price, 'f', -1, 64)
}

// bestDirection 返回价差较大的方向；任一价格非正时 ok=false
func bestDirection(binance, bybit float64) (dsvc.Candidate, float64, bool) {
	var (
		best   dsvc.Candidate
		spread float64
		found  bool
	)
	for _, c := range dsvc.Candidates(binance, bybit) {
		if !c.Valid() {
			continue
		}
		s := dsvc.SpreadBps(c.SrcPrice, c.DstPrice)
		if !found || s > spread {
			best, spread, found = c, s, true
		}
	}
	return best, spread, found
}

func short(ex string) string {
	switch ex {
	case model.ExchangeBinance:
		return "B"
	case model.ExchangeBybit:
		return "Y"
	default:
		return ex
	}
}
