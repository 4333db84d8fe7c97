package exchange

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"arbwatch/internal/application/port"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultReconnectDelay 断线后固定等待时间（不做指数退避）
const DefaultReconnectDelay = 3 * time.Second

const (
	dialTimeout  = 10 * time.Second
	pingInterval = 20 * time.Second
	readTimeout  = 60 * time.Second
)

// RawTick 交易所原始字段，尚未校验
type RawTick struct {
	Symbol string
	Price  string
}

// Stream 各交易所的差异部分：连接地址、握手（订阅）、消息解码
type Stream interface {
	Name() string
	URL() string
	// Handshake 连接建立后、开始读之前调用；URL 隐式订阅的交易所直接返回 nil
	Handshake(conn *websocket.Conn) error
	// Decode 解析一条消息；非行情消息（ack、pong）返回 nil, nil
	Decode(b []byte) ([]RawTick, error)
}

// Stats 行情连接的计数器，可并发读
type Stats struct {
	ticks      atomic.Int64
	discarded  atomic.Int64
	reconnects atomic.Int64
}

type StatsSnapshot struct {
	Ticks      int64 `json:"ticks"`
	Discarded  int64 `json:"discarded"`
	Reconnects int64 `json:"reconnects"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Ticks:      s.ticks.Load(),
		Discarded:  s.discarded.Load(),
		Reconnects: s.reconnects.Load(),
	}
}

// Runner 负责单个交易所的连接循环：connecting -> streaming -> disconnected -> 固定延迟后重连
type Runner struct {
	Stream Stream
	Delay  time.Duration
	Stats  *Stats
}

// Run 一直运行直到 ctx 取消，之后关闭 out
func (r *Runner) Run(ctx context.Context, out chan<- port.Tick) {
	defer close(out)

	delay := r.Delay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	if r.Stats == nil {
		r.Stats = &Stats{}
	}
	name := r.Stream.Name()

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		if attempt > 0 {
			r.Stats.reconnects.Add(1)
		}

		session := uuid.NewString()
		logger := log.With().Str("feed", name).Str("session", session).Logger()

		logger.Info().Str("url", r.Stream.URL()).Msg("ws connecting")
		conn, err := dial(ctx, r.Stream.URL())
		if err != nil {
			logger.Error().Err(err).Dur("retry_in", delay).Msg("ws dial failed")
			if !Sleep(ctx, delay) {
				return
			}
			continue
		}

		if err := r.Stream.Handshake(conn); err != nil {
			_ = conn.Close()
			logger.Error().Err(err).Dur("retry_in", delay).Msg("subscribe failed")
			if !Sleep(ctx, delay) {
				return
			}
			continue
		}
		logger.Info().Msg("ws streaming")

		err = ReadLoop(ctx, conn, func(b []byte) {
			r.handle(ctx, b, out)
		})
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		logger.Warn().Err(err).Dur("retry_in", delay).Msg("ws disconnected, reconnecting")
		if !Sleep(ctx, delay) {
			return
		}
	}
}

func (r *Runner) handle(ctx context.Context, b []byte, out chan<- port.Tick) {
	name := r.Stream.Name()
	raws, err := r.Stream.Decode(b)
	if err != nil {
		r.Stats.discarded.Add(1)
		log.Debug().Str("feed", name).Err(err).Msg("discard undecodable message")
		return
	}
	for _, raw := range raws {
		sym := strings.ToUpper(strings.TrimSpace(raw.Symbol))
		pxs := strings.TrimSpace(raw.Price)
		px, ok := ParsePrice(pxs)
		if sym == "" || !ok {
			r.Stats.discarded.Add(1)
			log.Debug().Str("feed", name).Str("symbol", raw.Symbol).Str("price", raw.Price).Msg("discard incomplete tick")
			continue
		}
		r.Stats.ticks.Add(1)
		select {
		case out <- port.Tick{
			Exchange: name,
			Symbol:   sym,
			PriceStr: pxs,
			PriceNum: px,
			Ts:       time.Now().UnixMilli(),
		}:
		case <-ctx.Done():
			return
		}
	}
}

func dial(ctx context.Context, wsURL string) (*websocket.Conn, error) {
	cctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(cctx, wsURL, nil)
	return conn, err
}

// ReadLoop 读消息并定时发送 ping，连接出错或 ctx 取消时返回
func ReadLoop(ctx context.Context, conn *websocket.Conn, onMsg func([]byte)) error {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			onMsg(b)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// 关连接让读协程退出，等它结束再返回：onMsg 不会在返回后继续执行
			_ = conn.Close()
			for range errCh {
			}
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

// Sleep 等待 d；ctx 先结束则返回 false
func Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// ParsePrice 解析交易所价格字符串；空串、NaN、Inf 等都视为不可解析
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// BuildQueryURL builds a URL with query parameters
func BuildQueryURL(base, path, query string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", errors.New("base url is empty")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = path
	u.RawQuery = query
	return u.String(), nil
}
