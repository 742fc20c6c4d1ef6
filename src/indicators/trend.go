package indicators

// ADX returns the average directional index series, the trend-strength filter.
// Needs at least 2*period+1 bars.
func ADX(highs, lows, closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < 2*period+1 {
		return nil
	}
	if len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	tr := TrueRange(highs, lows, closes)

	plusDM := make([]float64, len(closes)-1)
	minusDM := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	atr := wilderSmooth(tr, period)
	plusSm := wilderSmooth(plusDM, period)
	minusSm := wilderSmooth(minusDM, period)
	if atr == nil || plusSm == nil || minusSm == nil {
		return nil
	}

	dx := make([]float64, len(atr))
	for i := range atr {
		if atr[i] == 0 {
			dx[i] = 0
			continue
		}
		plusDI := 100 * plusSm[i] / atr[i]
		minusDI := 100 * minusSm[i] / atr[i]
		sum := plusDI + minusDI
		if sum == 0 {
			dx[i] = 0
			continue
		}
		diff := plusDI - minusDI
		if diff < 0 {
			diff = -diff
		}
		dx[i] = 100 * diff / sum
	}

	return wilderSmooth(dx, period)
}
