package ranking

import (
	"math"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// auxiliary holds the per-symbol indicator columns carried alongside RS.
type auxiliary struct {
	MA50        float64
	MA200       float64
	Position52W float64
	VolumeRatio float64
}

// computeAuxiliary derives the moving averages (windows expressed in
// trading days and scaled to the interval), the position of the latest
// close within the 52-week range, and the ratio of the latest volume to
// its own 50-day moving average. Fields without enough history stay NaN.
func computeAuxiliary(bars []model.OHLCV, interval model.Interval) auxiliary {
	aux := auxiliary{
		MA50:        math.NaN(),
		MA200:       math.NaN(),
		Position52W: math.NaN(),
		VolumeRatio: math.NaN(),
	}
	if len(bars) == 0 {
		return aux
	}

	closes := closeSeries(bars)
	volumes := volumeSeries(bars)

	if w := interval.WindowFromDays(50); w > 0 {
		if ma, err := timeseries.SMA(closes, w, w); err == nil {
			aux.MA50 = ma.Last()
		}
		if vma, err := timeseries.SMA(volumes, w, w); err == nil {
			aux.VolumeRatio = volumes.Last() / vma.Last()
		}
	}
	if w := interval.WindowFromDays(200); w > 0 {
		if ma, err := timeseries.SMA(closes, w, w); err == nil {
			aux.MA200 = ma.Last()
		}
	}

	aux.Position52W = position52Week(bars, interval)
	return aux
}

// position52Week returns where the latest close sits within the trailing
// 52-week high/low range, clamped to [0, 1]. A flat range scores 0.5.
func position52Week(bars []model.OHLCV, interval model.Interval) float64 {
	n := len(bars)
	span := interval.WindowFromDays(252)
	if span < 1 {
		span = 1
	}
	start := n - span
	if start < 0 {
		start = 0
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	current := bars[n-1].Close
	if high == low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}

func closeSeries(bars []model.OHLCV) timeseries.Series {
	s := timeseries.Series{}
	for _, b := range bars {
		s.Times = append(s.Times, b.Time)
		s.Values = append(s.Values, b.Close)
	}
	return s
}

func volumeSeries(bars []model.OHLCV) timeseries.Series {
	s := timeseries.Series{}
	for _, b := range bars {
		s.Times = append(s.Times, b.Time)
		s.Values = append(s.Values, b.Volume)
	}
	return s
}
