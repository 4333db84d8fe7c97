package bybit

import (
	"bytes"
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
	"github.com/rs/zerolog/log"
)

// TickerFeed Bybit v5 现货 tickers，连接后需要发送 subscribe 消息
type TickerFeed struct {
	wsURL  string // e.g. wss://stream.bybit.com/v5/public/spot
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

func (f *TickerFeed) Name() string { return model.ExchangeBybit }

func (f *TickerFeed) Stats() exchange.StatsSnapshot { return f.stats.Snapshot() }

type bybitSubReq struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

type bybitTickerItem struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
}

// data can be object OR array
type BybitDataList []bybitTickerItem

func (d *BybitDataList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = nil
		return nil
	}
	switch b[0] {
	case '[':
		var arr []bybitTickerItem
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*d = arr
		return nil
	case '{':
		var one bybitTickerItem
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*d = BybitDataList{one}
		return nil
	default:
		return fmt.Errorf("unexpected data json: %s", string(b))
	}
}

type bybitTickerMsg struct {
	Topic string        `json:"topic"`
	Type  string        `json:"type"`
	Ts    int64         `json:"ts"`
	Data  BybitDataList `json:"data"`

	Success *bool  `json:"success,omitempty"`
	RetMsg  string `json:"ret_msg,omitempty"`
	Op      string `json:"op,omitempty"`
}

func (f *TickerFeed) Subscribe(ctx context.Context, symbols []string) (<-chan port.Tick, error) {
	if f.wsURL == "" {
		return nil, errors.New("bybit ws_url empty")
	}

	topics := buildTopics(f.symbol.Coins2Symbols(symbols))
	if len(topics) == 0 {
		return nil, errors.New("no valid symbols for bybit topics")
	}

	out := make(chan port.Tick, 1024)
	r := &exchange.Runner{
		Stream: &stream{url: f.wsURL, topics: topics},
		Delay:  f.delay,
		Stats:  &f.stats,
	}
	go r.Run(ctx, out)
	return out, nil
}

func buildTopics(symbols []string) []string {
	topics := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		topics = append(topics, "tickers."+s)
	}
	return topics
}

type stream struct {
	url    string
	topics []string
}

func (s *stream) Name() string { return model.ExchangeBybit }

func (s *stream) URL() string { return s.url }

// Handshake 每次（重）连接后重新发送订阅
func (s *stream) Handshake(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	defer conn.SetWriteDeadline(time.Time{})
	return conn.WriteJSON(bybitSubReq{Op: "subscribe", Args: s.topics})
}

func (s *stream) Decode(b []byte) ([]exchange.RawTick, error) {
	return decodeTicker(b)
}

func decodeTicker(b []byte) ([]exchange.RawTick, error) {
	var msg bybitTickerMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	// ack
	if msg.Success != nil {
		if !*msg.Success {
			log.Error().Str("feed", model.ExchangeBybit).Str("ret_msg", msg.RetMsg).Msg("subscribe not success")
		}
		return nil, nil
	}
	if !strings.HasPrefix(msg.Topic, "tickers.") {
		return nil, nil
	}

	out := make([]exchange.RawTick, 0, len(msg.Data))
	for _, d := range msg.Data {
		out = append(out, exchange.RawTick{Symbol: d.Symbol, Price: d.LastPrice})
	}
	if len(out) == 0 {
		out = append(out, exchange.RawTick{})
	}
	return out, nil
}
