package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
	"arbwatch/internal/infrastructure/exchange"

	"github.com/gorilla/websocket"
)

// TickerFeed Binance 现货 24hr ticker（combined stream），订阅通过 URL 完成
type TickerFeed struct {
	wsURL  string // e.g. wss://stream.binance.com:9443
	delay  time.Duration
	symbol *exchange.CommonSymbolConverter
	stats  exchange.Stats
}

func NewTickerFeed(wsURL string, reconnectDelay time.Duration, quote string) *TickerFeed {
	return &TickerFeed{
		wsURL:  strings.TrimSpace(wsURL),
		delay:  reconnectDelay,
		symbol: exchange.NewCommonSymbolConverter(quote),
	}
}

func (f *TickerFeed) Name() string { return model.ExchangeBinance }

func (f *TickerFeed) Stats() exchange.StatsSnapshot { return f.stats.Snapshot() }

type binanceCombined struct {
	Stream string            `json:"stream"`
	Data   *binanceTickerMsg `json:"data"`
}

type binanceTickerMsg struct {
	Symbol string `json:"s"`
	Last   string `json:"c"`
}

func (f *TickerFeed) Subscribe(ctx context.Context, symbols []string) (<-chan port.Tick, error) {
	wsURL, err := buildCombinedURL(f.wsURL, f.symbol.Coins2Symbols(symbols))
	if err != nil {
		return nil, err
	}

	out := make(chan port.Tick, 1024)
	r := &exchange.Runner{
		Stream: &stream{url: wsURL},
		Delay:  f.delay,
		Stats:  &f.stats,
	}
	go r.Run(ctx, out)
	return out, nil
}

func buildCombinedURL(base string, symbols []string) (string, error) {
	if base == "" {
		return "", errors.New("binance ws_url empty")
	}

	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		streams = append(streams, fmt.Sprintf("%s@ticker", s))
	}
	if len(streams) == 0 {
		return "", errors.New("no valid symbols")
	}
	return exchange.BuildQueryURL(base, "/stream", "streams="+strings.Join(streams, "/"))
}

type stream struct {
	url string
}

func (s *stream) Name() string { return model.ExchangeBinance }

func (s *stream) URL() string { return s.url }

func (s *stream) Handshake(*websocket.Conn) error { return nil }

func (s *stream) Decode(b []byte) ([]exchange.RawTick, error) {
	return decodeTicker(b)
}

func decodeTicker(b []byte) ([]exchange.RawTick, error) {
	var msg binanceCombined
	if err := json.Unmarshal(b, &msg); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if msg.Data == nil {
		return []exchange.RawTick{{}}, nil
	}
	return []exchange.RawTick{{Symbol: msg.Data.Symbol, Price: msg.Data.Last}}, nil
}
