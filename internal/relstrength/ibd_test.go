package relstrength

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func daily(values ...float64) timeseries.Series {
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = base.AddDate(0, 0, i)
	}
	return timeseries.Series{Times: times, Values: values}
}

func TestRelativeStrengthSelfIsHundred(t *testing.T) {
	s := daily(100, 102, 105, 103, 107, 110, 108, 112)
	rs, err := RelativeStrength(s, s, model.IntervalDaily)
	require.NoError(t, err)
	require.Equal(t, s.Len(), rs.Len())
	for i, v := range rs.Values {
		assert.Equal(t, 100.0, v, "index %d", i)
	}
}

func TestRelativeStrengthScaleInvariant(t *testing.T) {
	s := daily(100, 102, 105, 103, 107)
	ref := daily(1000, 1010, 1015, 1005, 1020)
	scaled := s.Clone()
	for i := range scaled.Values {
		scaled.Values[i] *= 7
	}

	a, err := RelativeStrength(s, ref, model.IntervalDaily)
	require.NoError(t, err)
	b, err := RelativeStrength(scaled, ref, model.IntervalDaily)
	require.NoError(t, err)
	for i := range a.Values {
		assert.InDelta(t, a.Values[i], b.Values[i], 1e-9, "index %d", i)
	}
}

func TestRelativeStrengthShortHistory(t *testing.T) {
	// Five daily bars: every quarter lookback clips to len-1 = 4.
	s := daily(100, 102, 105, 103, 107)
	ref := daily(1000, 1010, 1015, 1005, 1020)
	rs, err := RelativeStrength(s, ref, model.IntervalDaily)
	require.NoError(t, err)

	for i, v := range rs.Values {
		assert.False(t, math.IsNaN(v), "index %d", i)
	}
	// q1..q4 all clip to a 4-bar lookback so the blend is the plain
	// 4-bar return: stock +7%, benchmark +2%.
	assert.InDelta(t, 1.07/1.02*100, rs.Last(), 0.005)
}

func TestRelativeStrengthOutperformer(t *testing.T) {
	// Flat benchmark: RS reduces to (1 + weighted return) * 100.
	stock := daily(100, 100, 100, 100, 200)
	bench := daily(1000, 1000, 1000, 1000, 1000)
	rs, err := RelativeStrength(stock, bench, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, 200.0, rs.Last())
	assert.Equal(t, 100.0, rs.Values[0])
}

func TestRelativeStrength3M(t *testing.T) {
	s := daily(100, 100, 100, 100, 200)
	bench := daily(1000, 1000, 1000, 1000, 1000)
	rs, err := RelativeStrength3M(s, bench, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, 200.0, rs.Last())
}

func TestRelativeStrengthErrors(t *testing.T) {
	_, err := RelativeStrength(timeseries.Series{}, daily(1), model.IntervalDaily)
	assert.Error(t, err)

	// disjoint date ranges
	a := daily(1, 2)
	b := timeseries.Series{
		Times:  []time.Time{base.AddDate(1, 0, 0), base.AddDate(1, 0, 1)},
		Values: []float64{1, 2},
	}
	_, err = RelativeStrength(a, b, model.IntervalDaily)
	assert.Error(t, err)
}
