package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"arbwatch/internal/domain/model"
)

// 需要真实数据库：ARBWATCH_TEST_POSTGRES_DSN=postgres://... go test ./...
func TestPostgresRepoRetention(t *testing.T) {
	dsn := os.Getenv("ARBWATCH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ARBWATCH_TEST_POSTGRES_DSN not set")
	}

	repo, err := New(dsn)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if _, err := repo.db.ExecContext(ctx, `TRUNCATE signals`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	var last model.Signal
	for i := 0; i < 5; i++ {
		last, err = repo.InsertSignal(ctx, model.Signal{
			Symbol: "BTCUSDT", Src: "binance", Dst: "bybit",
			SrcPrice: 100, DstPrice: 101, SpreadBps: 100,
			CreatedAt: time.Now().UTC(),
		}, 2)
		if err != nil {
			t.Fatalf("InsertSignal failed: %v", err)
		}
	}

	n, err := repo.CountSignals(ctx)
	if err != nil {
		t.Fatalf("CountSignals failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 signals, got %d", n)
	}

	recent, err := repo.RecentSignals(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSignals failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != last.ID {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}
