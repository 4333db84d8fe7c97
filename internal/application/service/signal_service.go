package service

import (
	"context"
	"errors"

	"arbwatch/internal/application/port"
	"arbwatch/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// DefaultMaxSignals 默认保留的信号条数
const DefaultMaxSignals = 200

type SignalService struct {
	repo       port.SignalRepository
	keep       int
	publishers []port.SignalPublisher
}

func NewSignalService(repo port.SignalRepository, keep int, publishers ...port.SignalPublisher) *SignalService {
	if keep <= 0 {
		keep = DefaultMaxSignals
	}
	out := make([]port.SignalPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return &SignalService{repo: repo, keep: keep, publishers: out}
}

// Record 插入并裁剪到最新 keep 条（仓储保证同一事务），之后旁路广播
func (s *SignalService) Record(ctx context.Context, sig model.Signal) (model.Signal, error) {
	if s.repo == nil {
		return model.Signal{}, errors.New("signal repository not configured")
	}
	stored, err := s.repo.InsertSignal(ctx, sig, s.keep)
	if err != nil {
		return model.Signal{}, err
	}

	for _, p := range s.publishers {
		if err := p.PublishSignal(ctx, stored); err != nil {
			log.Warn().Err(err).Int64("id", stored.ID).Str("symbol", stored.Symbol).Msg("publish signal failed")
		}
	}
	return stored, nil
}

// Recent 最新的 limit 条信号（id 倒序）
func (s *SignalService) Recent(ctx context.Context, limit int) ([]model.Signal, error) {
	if limit <= 0 {
		limit = s.keep
	}
	return s.repo.RecentSignals(ctx, limit)
}

func (s *SignalService) Keep() int { return s.keep }
