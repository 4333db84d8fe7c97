package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"arbwatch/internal/domain/model"
)

type mockQuotes map[string]float64

func (m mockQuotes) Get(exchange, symbol string) (model.Quote, bool) {
	p, ok := m[exchange+":"+symbol]
	if !ok {
		return model.Quote{}, false
	}
	return model.Quote{Price: p}, true
}

type mockNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *mockNotifier) Send(ctx context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

func (n *mockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.texts)
}

// mockRepository 内存版仓储，语义与 sqlite 一致：自增 id，插入后只保留最新 keep 条
type mockRepository struct {
	mu      sync.Mutex
	nextID  int64
	rows    []model.Signal
	inserts int
	err     error
}

func (m *mockRepository) InsertSignal(ctx context.Context, sig model.Signal, keep int) (model.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.err != nil {
		return model.Signal{}, m.err
	}
	m.nextID++
	sig.ID = m.nextID
	m.rows = append(m.rows, sig)
	if len(m.rows) > keep {
		m.rows = append([]model.Signal(nil), m.rows[len(m.rows)-keep:]...)
	}
	return sig, nil
}

func (m *mockRepository) RecentSignals(ctx context.Context, limit int) ([]model.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.Signal(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRepository) CountSignals(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *mockRepository) Close() error { return nil }

type mockPublisher struct {
	mu   sync.Mutex
	ids  []int64
	fail bool
}

func (p *mockPublisher) PublishSignal(ctx context.Context, sig model.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, sig.ID)
	if p.fail {
		return errors.New("publisher down")
	}
	return nil
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
