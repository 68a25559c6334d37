package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Series is an ordered sequence of (timestamp, value) pairs with strictly
// increasing timestamps. Values may be NaN where undefined. Gaps at
// non-trading days are permitted and never interpolated across.
type Series struct {
	Times  []time.Time
	Values []float64
}

// New builds a Series after validating shape and timestamp order.
func New(times []time.Time, values []float64) (Series, error) {
	if len(times) != len(values) {
		return Series{}, fmt.Errorf("times/values length mismatch: %d vs %d", len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return Series{}, fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}
	return Series{Times: times, Values: values}, nil
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Values) }

// Empty reports whether the series has no points.
func (s Series) Empty() bool { return len(s.Values) == 0 }

// Last returns the most recent value, or NaN for an empty series.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// LastTime returns the most recent timestamp; zero for an empty series.
func (s Series) LastTime() time.Time {
	if len(s.Times) == 0 {
		return time.Time{}
	}
	return s.Times[len(s.Times)-1]
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	t := make([]time.Time, len(s.Times))
	v := make([]float64, len(s.Values))
	copy(t, s.Times)
	copy(v, s.Values)
	return Series{Times: t, Values: v}
}

// emptyLike returns a new series sharing s's timestamps with all-NaN values.
func emptyLike(s Series) Series {
	v := make([]float64, len(s.Values))
	for i := range v {
		v[i] = math.NaN()
	}
	return Series{Times: s.Times, Values: v}
}

// AsOf returns the latest value at or before t, using binary search.
// The second result is false when no sample exists at or before t.
func AsOf(s Series, t time.Time) (float64, bool) {
	// First index with time after t; the sample before it is the answer.
	i := sort.Search(len(s.Times), func(i int) bool { return s.Times[i].After(t) })
	if i == 0 {
		return math.NaN(), false
	}
	return s.Values[i-1], true
}

// Align intersects two series on matching timestamps, preserving order.
func Align(a, b Series) (Series, Series) {
	var at, bt []time.Time
	var av, bv []float64
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		switch {
		case a.Times[i].Before(b.Times[j]):
			i++
		case b.Times[j].Before(a.Times[i]):
			j++
		default:
			at = append(at, a.Times[i])
			av = append(av, a.Values[i])
			bt = append(bt, b.Times[j])
			bv = append(bv, b.Values[j])
			i++
			j++
		}
	}
	return Series{Times: at, Values: av}, Series{Times: bt, Values: bv}
}

// PctChange returns the fractional change over the trailing `periods`
// samples: (v[i] - v[i-periods]) / v[i-periods]. The first `periods`
// positions are NaN. Division by zero yields Inf; callers replace it.
func PctChange(s Series, periods int) (Series, error) {
	if periods <= 0 {
		return Series{}, errors.New("periods must be positive")
	}
	if s.Empty() {
		return Series{}, errors.New("empty series")
	}
	out := emptyLike(s)
	for i := periods; i < s.Len(); i++ {
		prev := s.Values[i-periods]
		out.Values[i] = (s.Values[i] - prev) / prev
	}
	return out, nil
}

// ForwardFill replaces each NaN with the most recent preceding value.
// Leading NaNs are preserved.
func ForwardFill(s Series) Series {
	out := s.Clone()
	last := math.NaN()
	for i, v := range out.Values {
		if math.IsNaN(v) {
			out.Values[i] = last
		} else {
			last = v
		}
	}
	return out
}

// Interpolate fills interior NaN runs linearly between their non-NaN
// neighbors and extends the last valid value over trailing NaNs. Leading
// NaNs are preserved. Used for statement series only; price series are
// never interpolated.
func Interpolate(s Series) Series {
	out := s.Clone()
	n := out.Len()
	prev := -1 // index of last non-NaN
	for i := 0; i < n; i++ {
		if !math.IsNaN(out.Values[i]) {
			if prev >= 0 && i-prev > 1 {
				step := (out.Values[i] - out.Values[prev]) / float64(i-prev)
				for k := prev + 1; k < i; k++ {
					out.Values[k] = out.Values[prev] + step*float64(k-prev)
				}
			}
			prev = i
		}
	}
	if prev >= 0 {
		for k := prev + 1; k < n; k++ {
			out.Values[k] = out.Values[prev]
		}
	}
	return out
}

// Round2 rounds to 2 decimals (half away from zero) using exact decimal
// arithmetic. NaN and Inf map to NaN, so degenerate ratios drop out of
// downstream ranking instead of sorting arbitrarily.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round2Series applies Round2 pointwise.
func Round2Series(s Series) Series {
	out := s.Clone()
	for i, v := range out.Values {
		out.Values[i] = Round2(v)
	}
	return out
}
