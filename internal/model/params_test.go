package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	for _, s := range []string{"1d", "1wk", "1mo"} {
		iv, err := ParseInterval(s)
		require.NoError(t, err)
		assert.Equal(t, Interval(s), iv)
	}
	_, err := ParseInterval("5m")
	assert.Error(t, err)
	_, err = ParseInterval("")
	assert.Error(t, err)
}

func TestIntervalWindows(t *testing.T) {
	tests := []struct {
		interval   Interval
		quarterLen int
		rsWindow   int
		from50     int
	}{
		{IntervalDaily, 63, 252, 50},
		{IntervalWeekly, 13, 52, 10},
		{IntervalMonthly, 3, 12, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.quarterLen, tt.interval.QuarterLen(), "%s quarter", tt.interval)
		assert.Equal(t, tt.rsWindow, tt.interval.RSWindow(), "%s rs window", tt.interval)
		assert.Equal(t, tt.from50, tt.interval.WindowFromDays(50), "%s 50d window", tt.interval)
	}
}

func TestParseMAType(t *testing.T) {
	_, err := ParseMAType("SMA")
	assert.NoError(t, err)
	_, err = ParseMAType("EMA")
	assert.NoError(t, err)
	_, err = ParseMAType("sma")
	assert.Error(t, err, "type names are case sensitive")
}

func TestParseRatingMethod(t *testing.T) {
	_, err := ParseRatingMethod("rank")
	assert.NoError(t, err)
	_, err = ParseRatingMethod("qcut")
	assert.NoError(t, err)
	_, err = ParseRatingMethod("percentile")
	assert.Error(t, err)
}

func TestFrequencyYoYShift(t *testing.T) {
	assert.Equal(t, 4, FrequencyQuarterly.YoYShift())
	assert.Equal(t, 1, FrequencyAnnual.YoYShift())
}

func TestHorizonBefore(t *testing.T) {
	end := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		Horizon{Months: 1}.Before(end))
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		Horizon{Weeks: 1}.Before(end))
	assert.Equal(t, time.Date(2023, 9, 8, 0, 0, 0, 0, time.UTC),
		Horizon{Months: 9, Weeks: 1}.Before(end))
}

func TestDefaultHorizons(t *testing.T) {
	require.Len(t, DefaultHorizons, 4)
	assert.Equal(t, "1 Month Ago", DefaultHorizons[0].Label)
	assert.Equal(t, 9, DefaultHorizons[3].Months)
}
