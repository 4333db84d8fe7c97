package container

import (
	"context"
	"strings"
	"sync"
	"testing"

	"arbwatch/internal/domain/model"
	"arbwatch/internal/infrastructure/storage"
)

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *recordingNotifier) Send(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

func TestContainerSharesQuoteStore(t *testing.T) {
	c := New(storage.NewInMemorySignalRepository(), &recordingNotifier{}, 5, 10)
	if c.QuoteStore() != c.QuoteStore() {
		t.Fatal("expected a single shared QuoteStore")
	}
	if c.Detector() != c.Detector() || c.SignalService() != c.SignalService() {
		t.Fatal("expected lazily created singletons")
	}
}

func TestContainerServiceWorkflow(t *testing.T) {
	repo := storage.NewInMemorySignalRepository()
	notifier := &recordingNotifier{}
	c := New(repo, notifier, 5, 2)
	defer c.Close()

	ctx := context.Background()
	store := c.QuoteStore()
	det := c.Detector()

	// bybit 比 binance 高 10bps
	store.Update(model.ExchangeBinance, "BTCUSDT", 100)
	store.Update(model.ExchangeBybit, "BTCUSDT", 100.1)

	for i := 0; i < 3; i++ {
		sig, err := det.Evaluate(ctx, "BTCUSDT")
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if sig == nil || sig.Src != "binance" || sig.Dst != "bybit" {
			t.Fatalf("unexpected signal: %+v", sig)
		}
	}

	n, _ := repo.CountSignals(ctx)
	if n != 2 {
		t.Fatalf("expected retention of 2, got %d", n)
	}
	if len(notifier.texts) != 3 || !strings.HasPrefix(notifier.texts[0], "<b>BTCUSDT</b>") {
		t.Fatalf("unexpected notifications: %v", notifier.texts)
	}

	recent, err := c.SignalService().Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != 3 {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}
