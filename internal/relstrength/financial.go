package relstrength

import (
	"errors"
	"math"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// yoyEpsilon keeps the growth denominator away from zero for metrics that
// cross zero (e.g. EPS swinging negative).
const yoyEpsilon = 1e-8

// YoYGrowth computes year-over-year growth for a statement series:
// (current - prior) / (min(|current|, |prior|) + ε), where prior sits
// YoYShift() periods back (4 for quarterly data, 1 for annual). Interior
// gaps are linearly interpolated first. Positions without a prior value
// are NaN.
func YoYGrowth(s timeseries.Series, freq model.Frequency) (timeseries.Series, error) {
	if s.Empty() {
		return timeseries.Series{}, errors.New("empty metric series")
	}
	data := timeseries.Interpolate(s)
	shift := freq.YoYShift()
	out := data.Clone()
	for i := range out.Values {
		if i < shift {
			out.Values[i] = math.NaN()
			continue
		}
		cur, prior := data.Values[i], data.Values[i-shift]
		if math.IsNaN(cur) || math.IsNaN(prior) {
			out.Values[i] = math.NaN()
			continue
		}
		denom := math.Min(math.Abs(cur), math.Abs(prior)) + yoyEpsilon
		out.Values[i] = (cur - prior) / denom
	}
	return out, nil
}

// QoQGrowth computes quarter-over-quarter growth for a quarterly series
// (one-period shift).
func QoQGrowth(s timeseries.Series) (timeseries.Series, error) {
	return YoYGrowth(s, model.FrequencyAnnual)
}

// WeightedYoYGrowth blends quarterly and annual YoY growth, smoothing the
// quarterly series with a 2-period and the annual with a 3-period trailing
// mean, then combining the aligned tails as (2·quarterly + 1·annual)/3.
// The result carries the quarterly tail's timestamps.
func WeightedYoYGrowth(quarterly, annual timeseries.Series) (timeseries.Series, error) {
	qGrowth, err := YoYGrowth(quarterly, model.FrequencyQuarterly)
	if err != nil {
		return timeseries.Series{}, err
	}
	aGrowth, err := YoYGrowth(annual, model.FrequencyAnnual)
	if err != nil {
		return timeseries.Series{}, err
	}

	maQ, err := timeseries.SMA(qGrowth, 2, 1)
	if err != nil {
		return timeseries.Series{}, err
	}
	maA, err := timeseries.SMA(aGrowth, 3, 1)
	if err != nil {
		return timeseries.Series{}, err
	}

	n := maQ.Len()
	if maA.Len() < n {
		n = maA.Len()
	}
	qTail := tail(maQ, n)
	aTail := tail(maA, n)

	out := qTail.Clone()
	for i := range out.Values {
		out.Values[i] = (2*qTail.Values[i] + aTail.Values[i]) / 3
	}
	return out, nil
}

// MetricStrengthVsBenchmark computes fundamentals relative strength: the
// difference between the metric's and the benchmark's weighted YoY growth
// over their aligned tails, scaled by 100.
func MetricStrengthVsBenchmark(quarterlyMetric, annualMetric, quarterlyBench, annualBench timeseries.Series) (timeseries.Series, error) {
	growthMetric, err := WeightedYoYGrowth(quarterlyMetric, annualMetric)
	if err != nil {
		return timeseries.Series{}, err
	}
	growthBench, err := WeightedYoYGrowth(quarterlyBench, annualBench)
	if err != nil {
		return timeseries.Series{}, err
	}

	n := growthMetric.Len()
	if growthBench.Len() < n {
		n = growthBench.Len()
	}
	mTail := tail(growthMetric, n)
	bTail := tail(growthBench, n)

	out := mTail.Clone()
	for i := range out.Values {
		out.Values[i] = (mTail.Values[i] - bTail.Values[i]) * 100
	}
	return out, nil
}

func tail(s timeseries.Series, n int) timeseries.Series {
	if n >= s.Len() {
		return s
	}
	return timeseries.Series{
		Times:  s.Times[s.Len()-n:],
		Values: s.Values[s.Len()-n:],
	}
}
