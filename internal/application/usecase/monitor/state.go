package monitor

import (
	"strings"
	"sync"

	"arbwatch/internal/domain/model"
)

// QuoteStore 进程内共享的最新价格表：exchange -> symbol -> Quote
// 两个行情连接写、检测器读；每次 Update / Get 都在锁内完成
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]map[string]model.Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: make(map[string]map[string]model.Quote, len(model.Venues)),
	}
}

// Update 无条件覆盖（last-write-wins），不校验价格正负
func (s *QuoteStore) Update(exchange, symbol string, price float64) {
	ex, sym := normKey(exchange, symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	bySym := s.quotes[ex]
	if bySym == nil {
		bySym = make(map[string]model.Quote)
		s.quotes[ex] = bySym
	}
	bySym[sym] = model.Quote{Price: price}
}

// Get 从未更新过的 (exchange, symbol) 返回 ok=false，而不是零值价格
func (s *QuoteStore) Get(exchange, symbol string) (model.Quote, bool) {
	ex, sym := normKey(exchange, symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[ex][sym]
	return q, ok
}

// Snapshot 返回副本，避免外部修改
func (s *QuoteStore) Snapshot() map[string]map[string]model.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]model.Quote, len(s.quotes))
	for ex, bySym := range s.quotes {
		cp := make(map[string]model.Quote, len(bySym))
		for sym, q := range bySym {
			cp[sym] = q
		}
		out[ex] = cp
	}
	return out
}

func normKey(exchange, symbol string) (string, string) {
	return strings.ToLower(strings.TrimSpace(exchange)), strings.ToUpper(strings.TrimSpace(symbol))
}
