package indicators

// RSI returns the Wilder relative strength index series over closes.
// Needs at least period+1 closes.
func RSI(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain := wilderSmooth(gains, period)
	avgLoss := wilderSmooth(losses, period)
	if avgGain == nil || avgLoss == nil {
		return nil
	}

	out := make([]float64, len(avgGain))
	for i := range avgGain {
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// Stochastic returns the slow %K and %D series.
// kPeriod is the raw lookback, slowing smooths %K, dPeriod smooths %D.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod, slowing int) (k, d []float64) {
	if kPeriod <= 0 || dPeriod <= 0 || slowing <= 0 {
		return nil, nil
	}
	if len(closes) < kPeriod || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil, nil
	}

	rawK := make([]float64, 0, len(closes)-kPeriod+1)
	for i := kPeriod - 1; i < len(closes); i++ {
		hh := highs[i]
		ll := lows[i]
		for j := i - kPeriod + 1; j < i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			rawK = append(rawK, 50)
		} else {
			rawK = append(rawK, 100*(closes[i]-ll)/(hh-ll))
		}
	}

	k = SMA(rawK, slowing)
	if k == nil {
		return nil, nil
	}
	d = SMA(k, dPeriod)
	if d == nil {
		return nil, nil
	}
	return k, d
}

func wilderSmooth(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	out := make([]float64, len(values)-period+1)
	out[0] = seed
	for i := period; i < len(values); i++ {
		out[i-period+1] = (out[i-period]*float64(period-1) + values[i]) / float64(period)
	}
	return out
}
