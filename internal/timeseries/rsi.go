package timeseries

import (
	"errors"
	"math"
)

// RSI computes the Relative Strength Index over `periods` samples using
// plain rolling means of gains and losses (no Wilder smoothing):
// 100 - 100/(1+rs) where rs = mean(gains)/mean(losses). The first
// periods-1 positions are NaN. When losses average zero the result is 100
// (rs → +Inf); a flat window yields NaN. Callers guard accordingly.
func RSI(s Series, periods int) (Series, error) {
	if periods <= 0 {
		return Series{}, errors.New("periods must be positive")
	}
	if s.Empty() {
		return Series{}, errors.New("empty series")
	}
	n := s.Len()
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := s.Values[i] - s.Values[i-1]
		switch {
		case math.IsNaN(delta):
			// undefined delta contributes nothing
		case delta > 0:
			gains[i] = delta
		default:
			losses[i] = -delta
		}
	}

	out := emptyLike(s)
	for i := periods - 1; i < n; i++ {
		var gainSum, lossSum float64
		for k := i - periods + 1; k <= i; k++ {
			gainSum += gains[k]
			lossSum += losses[k]
		}
		rs := gainSum / lossSum // may be Inf or NaN
		out.Values[i] = 100 - 100/(1+rs)
	}
	return out, nil
}
