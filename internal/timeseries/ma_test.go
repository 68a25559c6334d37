package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAFullWindow(t *testing.T) {
	s := daily(1, 2, 3, 4)
	out, err := SMA(s, 3, 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out.Values[0]))
	assert.True(t, math.IsNaN(out.Values[1]))
	assert.InDelta(t, 2.0, out.Values[2], 1e-12)
	assert.InDelta(t, 3.0, out.Values[3], 1e-12)
}

func TestSMAMinPeriodsOne(t *testing.T) {
	out, err := SMA(daily(1, 2, 3), 3, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Values[0], 1e-12)
	assert.InDelta(t, 1.5, out.Values[1], 1e-12)
	assert.InDelta(t, 2.0, out.Values[2], 1e-12)
}

func TestSMASkipsNaN(t *testing.T) {
	out, err := SMA(daily(1, math.NaN(), 3), 3, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Values[0], 1e-12)
	assert.InDelta(t, 1.0, out.Values[1], 1e-12, "NaN excluded from the mean")
	assert.InDelta(t, 2.0, out.Values[2], 1e-12)
}

func TestSMAErrors(t *testing.T) {
	_, err := SMA(daily(1), 0, 1)
	assert.Error(t, err)
	_, err = SMA(daily(1), 3, 0)
	assert.Error(t, err)
	_, err = SMA(Series{}, 3, 1)
	assert.Error(t, err)
}

func TestEMAConstantInput(t *testing.T) {
	out, err := EMA(daily(5, 5, 5, 5), 3, 1)
	require.NoError(t, err)
	for i, v := range out.Values {
		assert.InDelta(t, 5.0, v, 1e-12, "index %d", i)
	}
}

func TestEMARecursion(t *testing.T) {
	// window 3 -> alpha 0.5, seeded at the first value
	out, err := EMA(daily(1, 2, 4), 3, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Values[0], 1e-12)
	assert.InDelta(t, 1.5, out.Values[1], 1e-12)
	assert.InDelta(t, 2.75, out.Values[2], 1e-12)
}

func TestEMANaNLeavesStateUnchanged(t *testing.T) {
	out, err := EMA(daily(1, math.NaN(), 2), 3, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.Values[0], 1e-12)
	assert.True(t, math.IsNaN(out.Values[1]))
	assert.InDelta(t, 1.5, out.Values[2], 1e-12)
}

func TestEMAMinPeriods(t *testing.T) {
	out, err := EMA(daily(1, 2, 4), 3, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out.Values[0]))
	assert.InDelta(t, 1.5, out.Values[1], 1e-12)
}
