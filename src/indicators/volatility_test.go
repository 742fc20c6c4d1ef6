package indicators

import "testing"

func TestTrueRange(t *testing.T) {
	highs := []float64{10, 12, 11}
	lows := []float64{9, 10, 9}
	closes := []float64{9.5, 11, 10}

	got := TrueRange(highs, lows, closes)
	// bar1: max(12-10, |12-9.5|, |10-9.5|) = 2.5
	// bar2: max(11-9, |11-11|, |9-11|) = 2
	want := []float64{2.5, 2}

	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestATRConstantRange(t *testing.T) {
	// Every bar spans exactly 1.0 with no gaps, so ATR must be 1.0.
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range highs {
		highs[i] = 10.5
		lows[i] = 9.5
		closes[i] = 10
	}

	atr := ATR(highs, lows, closes, 14)
	if atr == nil {
		t.Fatal("expected series, got nil")
	}
	last, _ := Last(atr)
	if !almostEqual(last, 1.0) {
		t.Fatalf("expected ATR 1.0, got %v", last)
	}
}
