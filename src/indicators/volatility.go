package indicators

import "math"

// TrueRange returns the true range series. Needs at least two bars.
func TrueRange(highs, lows, closes []float64) []float64 {
	if len(closes) < 2 || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i-1] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR returns the Wilder-smoothed average true range series.
// Needs at least period+1 bars.
func ATR(highs, lows, closes []float64, period int) []float64 {
	tr := TrueRange(highs, lows, closes)
	if tr == nil || period <= 0 {
		return nil
	}
	return wilderSmooth(tr, period)
}
