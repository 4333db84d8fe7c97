package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen 信号 stream 的近似长度上限
const streamMaxLen int64 = 10000

type Repo struct {
	rdb          *redis.Client
	prefix       string
	ttl          time.Duration
	keyLatest    string // prefix + ":latest"
	signalStream string
	signalChan   string
}

type LatestPrice struct {
	Exchange string  `json:"exchange"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Ts       int64   `json:"ts"`
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient 连接并 ping，失败时关闭客户端
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// New signalStream/signalChan 为空时用 prefix 生成；非空时同样加 prefix
func New(rdb *redis.Client, prefix string, ttl time.Duration, signalStream, signalChan string) *Repo {
	prefix = strings.TrimSpace(prefix)
	return &Repo{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keyLatest:    key(prefix, "latest"),
		signalStream: key(prefix, orDefault(signalStream, "signals")),
		signalChan:   key(prefix, orDefault(signalChan, "signals:pub")),
	}
}

func key(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ":" + name
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

func (r *Repo) Close() error { return r.rdb.Close() }

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	if price <= 0 {
		return nil
	}
	lp := LatestPrice{Exchange: ex, Symbol: symbol, Price: price, Ts: ts}
	b, _ := json.Marshal(lp)

	// Hash: field = "binance:BTCUSDT" -> json
	field := fmt.Sprintf("%s:%s", ex, symbol)
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, field, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// PublishSignal XADD 到 stream（近似裁剪），再 PUBLISH JSON 给实时订阅者
func (r *Repo) PublishSignal(ctx context.Context, sig model.Signal) error {
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.signalStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: streamValues(sig),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", r.signalStream, err)
	}

	msg, err := json.Marshal(sig)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.signalChan, msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", r.signalChan, err)
	}
	return nil
}

func streamValues(sig model.Signal) map[string]any {
	return map[string]any{
		"id":         sig.ID,
		"symbol":     sig.Symbol,
		"src":        sig.Src,
		"dst":        sig.Dst,
		"src_price":  strconv.FormatFloat(sig.SrcPrice, 'f', -1, 64),
		"dst_price":  strconv.FormatFloat(sig.DstPrice, 'f', -1, 64),
		"spread_bps": strconv.FormatFloat(sig.SpreadBps, 'f', -1, 64),
		"created_at": sig.CreatedAt.UnixMilli(),
	}
}

var (
	_ port.SignalPublisher = (*Repo)(nil)
	_ port.QuoteMirror     = (*Repo)(nil)
)
