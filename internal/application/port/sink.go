package port

import (
	"context"
	"time"
)

// Notifier 告警发送，fire-and-forget：不返回错误，不阻塞调用方
type Notifier interface {
	Send(ctx context.Context, text string)
}

// StatusSink 周期性行情快照输出（控制台等）
type StatusSink interface {
	WriteStatus(ts time.Time, line string) error
}
