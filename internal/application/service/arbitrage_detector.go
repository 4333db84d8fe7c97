package service

import (
	"context"
	"fmt"
	"time"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
	dsvc "arbwatch/internal/domain/service"

	"github.com/rs/zerolog/log"
)

// QuoteReader 检测器只读访问最新价格
type QuoteReader interface {
	Get(exchange, symbol string) (model.Quote, bool)
}

// SignalRecorder 信号落库（含保留条数裁剪）
type SignalRecorder interface {
	Record(ctx context.Context, sig model.Signal) (model.Signal, error)
}

type ArbitrageDetector struct {
	quotes    QuoteReader
	notifier  port.Notifier
	recorder  SignalRecorder
	threshold float64 // 最小价差（bps）
	now       func() time.Time
}

func NewArbitrageDetector(quotes QuoteReader, notifier port.Notifier, recorder SignalRecorder, thresholdBps float64) *ArbitrageDetector {
	return &ArbitrageDetector{
		quotes:    quotes,
		notifier:  notifier,
		recorder:  recorder,
		threshold: thresholdBps,
		now:       time.Now,
	}
}

// Evaluate 对一个交易对检查两个方向的价差，每次调用最多产生一个信号。
// 任一交易所还没有价格时直接返回 (nil, nil)。
func (d *ArbitrageDetector) Evaluate(ctx context.Context, symbol string) (*model.Signal, error) {
	b, ok := d.quotes.Get(model.ExchangeBinance, symbol)
	if !ok {
		return nil, nil
	}
	y, ok := d.quotes.Get(model.ExchangeBybit, symbol)
	if !ok {
		return nil, nil
	}

	for _, c := range dsvc.Candidates(b.Price, y.Price) {
		if !c.Valid() {
			continue
		}
		spread := dsvc.SpreadBps(c.SrcPrice, c.DstPrice)
		if !dsvc.Qualifies(spread, d.threshold) {
			continue
		}

		sig := model.Signal{
			Symbol:    symbol,
			Src:       c.Src,
			Dst:       c.Dst,
			SrcPrice:  c.SrcPrice,
			DstPrice:  c.DstPrice,
			SpreadBps: spread,
			CreatedAt: d.now().UTC(),
		}

		d.notifier.Send(ctx, FormatAlert(sig))

		stored, err := d.recorder.Record(ctx, sig)
		if err != nil {
			return nil, fmt.Errorf("record signal %s %s->%s: %w", symbol, c.Src, c.Dst, err)
		}

		log.Info().
			Int64("id", stored.ID).
			Str("symbol", symbol).
			Str("src", c.Src).
			Str("dst", c.Dst).
			Float64("src_price", c.SrcPrice).
			Float64("dst_price", c.DstPrice).
			Float64("spread_bps", spread).
			Msg("spread signal")
		return &stored, nil
	}
	return nil, nil
}

// FormatAlert 告警文本（Telegram HTML parse mode）
func FormatAlert(sig model.Signal) string {
	return fmt.Sprintf("<b>%s</b>\n%s → %s\n%.4f → %.4f | <b>%.1f bps</b>",
		sig.Symbol, sig.Src, sig.Dst, sig.SrcPrice, sig.DstPrice, sig.SpreadBps)
}
