package composite

import (
	"context"

	"arbwatch/internal/application/port"
)

// Mirror 把最新价同时写到多个镜像（sqlite prices 表、redis hash），返回第一个错误
type Mirror struct {
	mirrors []port.QuoteMirror
}

func New(mirrors ...port.QuoteMirror) *Mirror {
	// nil mirrors are allowed; filter in constructor for safety
	out := make([]port.QuoteMirror, 0, len(mirrors))
	for _, m := range mirrors {
		if m != nil {
			out = append(out, m)
		}
	}
	return &Mirror{mirrors: out}
}

func (m *Mirror) Len() int { return len(m.mirrors) }

func (m *Mirror) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	var firstErr error
	for _, mm := range m.mirrors {
		if err := mm.UpsertLatestPrice(ctx, ex, symbol, price, ts); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.QuoteMirror = (*Mirror)(nil)
