package model

import (
	"fmt"
	"time"
)

// Interval is the spacing of data points in a price history.
type Interval string

const (
	IntervalDaily   Interval = "1d"
	IntervalWeekly  Interval = "1wk"
	IntervalMonthly Interval = "1mo"
)

// ParseInterval validates an interval string.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return Interval(s), nil
	}
	return "", fmt.Errorf("invalid interval %q: must be '1d', '1wk', or '1mo'", s)
}

// QuarterLen returns the number of trading periods in one quarter.
func (iv Interval) QuarterLen() int {
	switch iv {
	case IntervalWeekly:
		return 13
	case IntervalMonthly:
		return 3
	default:
		return 63
	}
}

// RSWindow returns the default moving-average window for Mansfield RS,
// sized to roughly one year of data.
func (iv Interval) RSWindow() int {
	switch iv {
	case IntervalWeekly:
		return 52
	case IntervalMonthly:
		return 12
	default:
		return 252
	}
}

// WindowFromDays converts a window expressed in trading days into a window
// in periods of this interval (1 week = 5 trading days, 1 month = 21).
func (iv Interval) WindowFromDays(days int) int {
	switch iv {
	case IntervalWeekly:
		return days / 5
	case IntervalMonthly:
		return days / 21
	default:
		return days
	}
}

// MAType selects the moving average used to normalize Dorsey RS.
type MAType string

const (
	MATypeSMA MAType = "SMA"
	MATypeEMA MAType = "EMA"
)

// ParseMAType validates a moving-average type string.
func ParseMAType(s string) (MAType, error) {
	switch MAType(s) {
	case MATypeSMA, MATypeEMA:
		return MAType(s), nil
	}
	return "", fmt.Errorf("invalid moving average type %q: must be 'SMA' or 'EMA'", s)
}

// RatingMethod selects how 1-99 ratings are derived from an RS column.
type RatingMethod string

const (
	RatingRank RatingMethod = "rank"
	RatingQCut RatingMethod = "qcut"
)

// ParseRatingMethod validates a rating method string.
func ParseRatingMethod(s string) (RatingMethod, error) {
	switch RatingMethod(s) {
	case RatingRank, RatingQCut:
		return RatingMethod(s), nil
	}
	return "", fmt.Errorf("invalid rating method %q: must be 'rank' or 'qcut'", s)
}

// Frequency is the reporting cadence of a financial statement series.
type Frequency string

const (
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

// YoYShift returns how many periods back the year-ago value sits.
func (f Frequency) YoYShift() int {
	if f == FrequencyAnnual {
		return 1
	}
	return 4
}

// Horizon is a calendar lookback used when sampling an RS series at
// historical offsets with as-of semantics.
type Horizon struct {
	Label  string
	Months int
	Weeks  int
}

// Before returns the target date the horizon points at, counting back from t.
func (h Horizon) Before(t time.Time) time.Time {
	return t.AddDate(0, -h.Months, -7*h.Weeks)
}

// DefaultHorizons is the standard lookback set for ranking tables.
var DefaultHorizons = []Horizon{
	{Label: "1 Month Ago", Months: 1},
	{Label: "3 Months Ago", Months: 3},
	{Label: "6 Months Ago", Months: 6},
	{Label: "9 Months Ago", Months: 9},
}
