package service

import (
	"math"
	"testing"

	"arbwatch/internal/domain/model"
)

func TestSpreadBps(t *testing.T) {
	cases := []struct {
		name     string
		src, dst float64
		want     float64
	}{
		{"fifty bps", 100.0, 100.5, 50.0},
		{"tenth of a bps", 100.0, 100.001, 0.1},
		{"negative", 100.5, 100.0, (100.0 - 100.5) / 100.5 * 10000},
		{"flat", 42000, 42000, 0},
	}
	for _, tc := range cases {
		got := SpreadBps(tc.src, tc.dst)
		if math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("%s: SpreadBps(%v, %v) = %v, want %v", tc.name, tc.src, tc.dst, got, tc.want)
		}
	}
}

func TestCandidatesOrder(t *testing.T) {
	c := Candidates(100, 101)
	if c[0].Src != model.ExchangeBinance || c[0].Dst != model.ExchangeBybit {
		t.Fatalf("first candidate should be binance->bybit, got %s->%s", c[0].Src, c[0].Dst)
	}
	if c[1].Src != model.ExchangeBybit || c[1].Dst != model.ExchangeBinance {
		t.Fatalf("second candidate should be bybit->binance, got %s->%s", c[1].Src, c[1].Dst)
	}
	if c[0].SrcPrice != 100 || c[0].DstPrice != 101 || c[1].SrcPrice != 101 || c[1].DstPrice != 100 {
		t.Errorf("prices not mapped to directions: %+v", c)
	}
}

func TestCandidateValid(t *testing.T) {
	for _, p := range []float64{0, -1, -0.0001} {
		if (Candidate{SrcPrice: p, DstPrice: 100}).Valid() {
			t.Errorf("src price %v should be invalid", p)
		}
		if (Candidate{SrcPrice: 100, DstPrice: p}).Valid() {
			t.Errorf("dst price %v should be invalid", p)
		}
	}
	if !(Candidate{SrcPrice: 1, DstPrice: 2}).Valid() {
		t.Error("positive prices should be valid")
	}
}

func TestQualifiesInclusive(t *testing.T) {
	if !Qualifies(5.0, 5.0) {
		t.Error("spread equal to threshold should qualify")
	}
	if Qualifies(4.999, 5.0) {
		t.Error("spread below threshold should not qualify")
	}
	if !Qualifies(0, 0) {
		t.Error("zero threshold should accept flat spread")
	}
}
