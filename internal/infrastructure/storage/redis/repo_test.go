package redis

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"arbwatch/internal/domain/model"
)

func TestKeyNaming(t *testing.T) {
	r := New(nil, "arbwatch", 0, "", "alerts")
	if r.keyLatest != "arbwatch:latest" {
		t.Fatalf("unexpected latest key: %s", r.keyLatest)
	}
	if r.signalStream != "arbwatch:signals" {
		t.Fatalf("unexpected stream key: %s", r.signalStream)
	}
	if r.signalChan != "arbwatch:alerts" {
		t.Fatalf("unexpected channel: %s", r.signalChan)
	}

	r = New(nil, "", 0, "s", "c")
	if r.signalStream != "s" || r.signalChan != "c" {
		t.Fatalf("unexpected keys without prefix: %s %s", r.signalStream, r.signalChan)
	}
}

func TestStreamValues(t *testing.T) {
	v := streamValues(model.Signal{
		ID: 7, Symbol: "BTCUSDT", Src: "binance", Dst: "bybit",
		SrcPrice: 100, DstPrice: 100.1, SpreadBps: 10,
		CreatedAt: time.UnixMilli(1700000000000),
	})
	if v["id"] != int64(7) || v["spread_bps"] != "10" || v["dst_price"] != "100.1" {
		t.Fatalf("unexpected stream values: %v", v)
	}
	if v["created_at"] != int64(1700000000000) {
		t.Fatalf("unexpected created_at: %v", v["created_at"])
	}
}

// 需要真实 redis：ARBWATCH_TEST_REDIS_ADDR=127.0.0.1:6379
func TestPublishSignal(t *testing.T) {
	addr := os.Getenv("ARBWATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARBWATCH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	rdb, err := NewClient(ctx, Options{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	prefix := "arbwatch-test-" + time.Now().Format("150405.000")
	r := New(rdb, prefix, time.Minute, "", "")
	defer func() {
		rdb.Del(ctx, r.signalStream, r.keyLatest)
		_ = r.Close()
	}()

	sub := rdb.Subscribe(ctx, r.signalChan)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sig := model.Signal{ID: 1, Symbol: "ETHUSDT", Src: "bybit", Dst: "binance", SrcPrice: 2000, DstPrice: 2002, SpreadBps: 10}
	if err := r.PublishSignal(ctx, sig); err != nil {
		t.Fatalf("PublishSignal: %v", err)
	}

	n, err := rdb.XLen(ctx, r.signalStream).Result()
	if err != nil || n != 1 {
		t.Fatalf("expected 1 stream entry, got %d (%v)", n, err)
	}

	select {
	case msg := <-sub.Channel():
		var got model.Signal
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode pubsub payload: %v", err)
		}
		if got.Symbol != "ETHUSDT" || got.Src != "bybit" {
			t.Fatalf("unexpected payload: %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for pubsub message")
	}

	if err := r.UpsertLatestPrice(ctx, "binance", "ETHUSDT", 2001, 1); err != nil {
		t.Fatalf("UpsertLatestPrice: %v", err)
	}
	if v, err := rdb.HGet(ctx, r.keyLatest, "binance:ETHUSDT").Result(); err != nil || v == "" {
		t.Fatalf("expected mirrored price, got %q (%v)", v, err)
	}
}
