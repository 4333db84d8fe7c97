package monitor

import (
	"strings"
	"testing"

	"arbwatch/internal/domain/model"
)

func TestFormatterRender(t *testing.T) {
	snap := map[string]map[string]model.Quote{
		"binance": {"BTCUSDT": {Price: 100}, "ETHUSDT": {Price: 2000}},
		"bybit":   {"BTCUSDT": {Price: 100.1}},
	}
	f := NewFormatter(5, false)

	got := f.Render(snap, []string{"BTCUSDT", "ETHUSDT"})
	want := "[ARB] BTCUSDT B:100 Y:100.1 Δ=+10.0bps(B→Y)  ||  ETHUSDT B:2000 Y:-- Δ=--"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatterPicksLargerDirection(t *testing.T) {
	snap := map[string]map[string]model.Quote{
		"binance": {"BTCUSDT": {Price: 100.1}},
		"bybit":   {"BTCUSDT": {Price: 100}},
	}
	got := NewFormatter(5, false).Render(snap, []string{"BTCUSDT"})
	if !strings.Contains(got, "(Y→B)") {
		t.Fatalf("expected bybit->binance direction, got %q", got)
	}
}

func TestFormatterColor(t *testing.T) {
	snap := map[string]map[string]model.Quote{
		"binance": {"BTCUSDT": {Price: 100}},
		"bybit":   {"BTCUSDT": {Price: 101}},
	}
	got := NewFormatter(5, true).Render(snap, []string{"BTCUSDT"})
	if !strings.Contains(got, ansiGreen) {
		t.Fatalf("expected qualifying spread in green, got %q", got)
	}
}
