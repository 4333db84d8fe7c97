package composite

import (
	"context"
	"errors"
	"testing"
)

type fakeMirror struct {
	calls int
	err   error
}

func (f *fakeMirror) UpsertLatestPrice(context.Context, string, string, float64, int64) error {
	f.calls++
	return f.err
}

func TestMirrorFanOut(t *testing.T) {
	a := &fakeMirror{err: errors.New("boom")}
	b := &fakeMirror{}
	m := New(a, nil, b)

	if m.Len() != 2 {
		t.Fatalf("expected nil mirror filtered, got %d", m.Len())
	}
	err := m.UpsertLatestPrice(context.Background(), "binance", "BTCUSDT", 1, 1)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected first error, got %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("expected every mirror called once, got %d %d", a.calls, b.calls)
	}
}
