package port

import (
	"context"

	"arbwatch/internal/domain/model"
)

// SignalRepository 信号持久化
type SignalRepository interface {
	// InsertSignal 在同一事务中插入信号并只保留最新 keep 条，返回带 id/created_at 的记录
	InsertSignal(ctx context.Context, sig model.Signal, keep int) (model.Signal, error)

	// RecentSignals 按 id 倒序返回最多 limit 条
	RecentSignals(ctx context.Context, limit int) ([]model.Signal, error)

	// CountSignals 当前保留的信号数量
	CountSignals(ctx context.Context) (int, error)

	Close() error
}

// SignalPublisher 信号落库后的旁路广播（redis stream / pubsub 等），失败不影响主流程
type SignalPublisher interface {
	PublishSignal(ctx context.Context, sig model.Signal) error
}

// QuoteMirror 最新价格的外部镜像（可选，best effort）
type QuoteMirror interface {
	UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error
}
