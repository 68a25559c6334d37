package timeseries

import (
	"errors"
	"math"
)

// SMA computes the arithmetic mean over a trailing window of `window`
// samples. Positions where fewer than `minPeriods` non-NaN points are
// available yield NaN; otherwise the mean is taken over however many
// points the window holds.
func SMA(s Series, window, minPeriods int) (Series, error) {
	if window <= 0 {
		return Series{}, errors.New("window must be positive")
	}
	if minPeriods < 1 {
		return Series{}, errors.New("minPeriods must be at least 1")
	}
	if s.Empty() {
		return Series{}, errors.New("empty series")
	}
	out := emptyLike(s)
	for i := range s.Values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for k := start; k <= i; k++ {
			if !math.IsNaN(s.Values[k]) {
				sum += s.Values[k]
				count++
			}
		}
		if count >= minPeriods {
			out.Values[i] = sum / float64(count)
		}
	}
	return out, nil
}

// EMA computes recursive exponential smoothing with α = 2/(window+1),
// unadjusted form: ema[t] = α·v[t] + (1-α)·ema[t-1], seeded with the first
// non-NaN value. NaN inputs leave the state unchanged and produce NaN
// output. Positions with fewer than `minPeriods` observations yield NaN.
func EMA(s Series, window, minPeriods int) (Series, error) {
	if window <= 0 {
		return Series{}, errors.New("window must be positive")
	}
	if minPeriods < 1 {
		return Series{}, errors.New("minPeriods must be at least 1")
	}
	if s.Empty() {
		return Series{}, errors.New("empty series")
	}
	alpha := 2.0 / (float64(window) + 1.0)
	out := emptyLike(s)
	ema := math.NaN()
	seen := 0
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(ema) {
			ema = v
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		seen++
		if seen >= minPeriods {
			out.Values[i] = ema
		}
	}
	return out, nil
}
