// Package relstrength implements the relative-strength formulas used by the
// ranking engines: IBD-style quarter-weighted return RS, Dorsey and
// Mansfield RS, and fundamentals (financial-metric) RS versus a weighted
// benchmark. All calculators are pure functions over aligned series.
package relstrength

import (
	"errors"
	"math"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// RelativeStrength computes the IBD-style relative strength of a stock
// versus a reference index: the quarter-weighted one-year return of each
// series, combined as (1+strength)/(1+strength_ref)*100 and rounded to 2
// decimals. 100 means the stock performed identically to the benchmark.
// Only the overlapping date range of the two series is considered.
func RelativeStrength(closes, closesRef timeseries.Series, interval model.Interval) (timeseries.Series, error) {
	return relativeStrength(closes, closesRef, interval, 4)
}

// RelativeStrength3M is the short-horizon counterpart restricted to the
// single nearest-quarter term of the weighted return.
func RelativeStrength3M(closes, closesRef timeseries.Series, interval model.Interval) (timeseries.Series, error) {
	return relativeStrength(closes, closesRef, interval, 1)
}

func relativeStrength(closes, closesRef timeseries.Series, interval model.Interval, quarters int) (timeseries.Series, error) {
	if closes.Empty() || closesRef.Empty() {
		return timeseries.Series{}, errors.New("empty close series")
	}
	a, b := timeseries.Align(closes, closesRef)
	if a.Empty() {
		return timeseries.Series{}, errors.New("no overlapping date range between stock and benchmark")
	}

	sStock, err := weightedReturn(a, interval.QuarterLen(), quarters)
	if err != nil {
		return timeseries.Series{}, err
	}
	sRef, err := weightedReturn(b, interval.QuarterLen(), quarters)
	if err != nil {
		return timeseries.Series{}, err
	}

	out := sStock.Clone()
	for i := range out.Values {
		out.Values[i] = (1 + sStock.Values[i]) / (1 + sRef.Values[i]) * 100
	}
	return timeseries.Round2Series(out), nil
}

// weightedReturn computes the trailing-year performance with the most
// recent quarter weighted double: 0.4·q1 + 0.2·q2 + 0.2·q3 + 0.2·q4.
// With quarters == 1 only the q1 term is used.
func weightedReturn(closes timeseries.Series, quarterLen, quarters int) (timeseries.Series, error) {
	if quarters == 1 {
		return quartersReturn(closes, 1, quarterLen)
	}
	weights := []float64{0.4, 0.2, 0.2, 0.2}
	var out timeseries.Series
	for q := 1; q <= quarters; q++ {
		ret, err := quartersReturn(closes, q, quarterLen)
		if err != nil {
			return timeseries.Series{}, err
		}
		if out.Empty() {
			out = ret.Clone()
			for i := range out.Values {
				out.Values[i] = 0
			}
		}
		w := weights[q-1]
		for i := range out.Values {
			out.Values[i] += w * ret.Values[i]
		}
	}
	return out, nil
}

// quartersReturn computes the fractional return over the trailing n
// quarters, clipping the lookback to len-1 when the series is shorter.
// Inf ratios become NaN and undefined positions are filled with 0, so
// short histories degrade to "no growth" instead of poisoning the blend.
func quartersReturn(closes timeseries.Series, n, quarterLen int) (timeseries.Series, error) {
	length := n * quarterLen
	if max := closes.Len() - 1; length > max {
		length = max
	}
	if length < 1 {
		out := closes.Clone()
		for i := range out.Values {
			out.Values[i] = 0
		}
		return out, nil
	}
	ret, err := timeseries.PctChange(closes, length)
	if err != nil {
		return timeseries.Series{}, err
	}
	for i, v := range ret.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			ret.Values[i] = 0
		}
	}
	return ret, nil
}
