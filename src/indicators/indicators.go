package indicators

// Series helpers shared by the individual indicators. All functions return nil
// when the input is shorter than the requested period.

// SMA returns the simple moving average series. Output length is
// len(values)-period+1; out[i] covers values[i..i+period-1].
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	out := make([]float64, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i-period+1] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average series, seeded with the SMA of
// the first period values. Output aligns with SMA output.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	k := 2.0 / (float64(period) + 1.0)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	out := make([]float64, len(values)-period+1)
	out[0] = seed
	for i := period; i < len(values); i++ {
		out[i-period+1] = values[i]*k + out[i-period]*(1-k)
	}
	return out
}

// Last returns the final element of a series, or 0 with ok=false when empty.
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}
