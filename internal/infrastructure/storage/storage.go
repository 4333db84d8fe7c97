package storage

import (
	"context"
	"sync"
	"time"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"
)

// 支持的 storage.driver
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// InMemorySignalRepository 进程内实现，重启即丢失；用于 dry run 和测试
type InMemorySignalRepository struct {
	mu      sync.Mutex
	nextID  int64
	signals []model.Signal // id 升序
}

// NewInMemorySignalRepository creates a new in-memory repository
func NewInMemorySignalRepository() *InMemorySignalRepository {
	return &InMemorySignalRepository{}
}

func (r *InMemorySignalRepository) InsertSignal(_ context.Context, sig model.Signal, keep int) (model.Signal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sig.ID = r.nextID
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}
	r.signals = append(r.signals, sig)
	if keep > 0 && len(r.signals) > keep {
		r.signals = append([]model.Signal(nil), r.signals[len(r.signals)-keep:]...)
	}
	return sig, nil
}

func (r *InMemorySignalRepository) RecentSignals(_ context.Context, limit int) ([]model.Signal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.signals) {
		limit = len(r.signals)
	}
	out := make([]model.Signal, 0, limit)
	for i := len(r.signals) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.signals[i])
	}
	return out, nil
}

func (r *InMemorySignalRepository) CountSignals(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.signals), nil
}

func (r *InMemorySignalRepository) Close() error {
	return nil
}

var _ port.SignalRepository = (*InMemorySignalRepository)(nil)
