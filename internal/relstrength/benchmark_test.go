package relstrength

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

func TestWeightedMetric(t *testing.T) {
	metrics := map[string]timeseries.Series{
		"AAA": quarterly(1, 2),
		"BBB": quarterly(3, 4),
	}
	weights := map[string]float64{"AAA": 1, "BBB": 3}

	out, excluded := WeightedMetric(metrics, weights)
	require.Empty(t, excluded)
	require.Equal(t, 2, out.Len())
	assert.InDelta(t, 2.5, out.Values[0], 1e-12)
	assert.InDelta(t, 3.5, out.Values[1], 1e-12)
}

func TestWeightedMetricExclusions(t *testing.T) {
	metrics := map[string]timeseries.Series{
		"GOOD":     quarterly(1, 2),
		"NOWEIGHT": quarterly(5, 6),
		"NANW":     quarterly(7, 8),
		"ZERO":     quarterly(9, 10),
		"EMPTY":    {},
	}
	weights := map[string]float64{
		"GOOD": 2,
		"NANW": math.NaN(),
		"ZERO": 0,
	}

	out, excluded := WeightedMetric(metrics, weights)
	assert.ElementsMatch(t, []string{"NOWEIGHT", "NANW", "ZERO", "EMPTY"}, excluded)
	require.Equal(t, 2, out.Len())
	assert.InDelta(t, 1.0, out.Values[0], 1e-12)
	assert.InDelta(t, 2.0, out.Values[1], 1e-12)
}

func TestWeightedMetricRightAligns(t *testing.T) {
	short := quarterly(10)
	long := quarterly(2, 4)
	out, excluded := WeightedMetric(map[string]timeseries.Series{
		"S": short,
		"L": long,
	}, map[string]float64{"S": 1, "L": 1})
	require.Empty(t, excluded)
	require.Equal(t, 2, out.Len())
	// the short series only contributes to the most recent period
	assert.InDelta(t, 1.0, out.Values[0], 1e-12)
	assert.InDelta(t, 7.0, out.Values[1], 1e-12)
	assert.Equal(t, long.Times, out.Times)
}

func TestWeightedMetricZeroTotalWeight(t *testing.T) {
	out, excluded := WeightedMetric(map[string]timeseries.Series{
		"A": quarterly(1),
	}, map[string]float64{"A": 0})
	assert.True(t, out.Empty())
	assert.Equal(t, []string{"A"}, excluded)
}
