package relstrength

import (
	"errors"
	"fmt"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// DorseyRS computes Dorsey Relative Strength: the pointwise ratio of stock
// close to benchmark close scaled by 100, over the overlapping date range.
// No smoothing is applied.
func DorseyRS(closes, closesIndex timeseries.Series) (timeseries.Series, error) {
	if closes.Empty() || closesIndex.Empty() {
		return timeseries.Series{}, errors.New("empty close series")
	}
	a, b := timeseries.Align(closes, closesIndex)
	if a.Empty() {
		return timeseries.Series{}, errors.New("no overlapping date range between stock and benchmark")
	}
	out := a.Clone()
	for i := range out.Values {
		out.Values[i] = a.Values[i] / b.Values[i] * 100
	}
	return out, nil
}

// MansfieldRS computes Mansfield Relative Strength: Dorsey RS normalized
// against its own moving average, (RSD/MA(RSD, window) - 1)·100, rounded
// to 2 decimals and centered near 0. Both close series are forward-filled
// first so illiquid days do not propagate NaN into the ratio. The moving
// average type is an enumerated SMA/EMA choice; anything else errors.
func MansfieldRS(closes, closesIndex timeseries.Series, window int, ma model.MAType) (timeseries.Series, error) {
	if window <= 0 {
		return timeseries.Series{}, errors.New("window must be positive")
	}
	rsd, err := DorseyRS(timeseries.ForwardFill(closes), timeseries.ForwardFill(closesIndex))
	if err != nil {
		return timeseries.Series{}, err
	}

	var avg timeseries.Series
	switch ma {
	case model.MATypeSMA:
		avg, err = timeseries.SMA(rsd, window, 1)
	case model.MATypeEMA:
		avg, err = timeseries.EMA(rsd, window, 1)
	default:
		return timeseries.Series{}, fmt.Errorf("invalid moving average type %q: must be 'SMA' or 'EMA'", ma)
	}
	if err != nil {
		return timeseries.Series{}, err
	}

	out := rsd.Clone()
	for i := range out.Values {
		out.Values[i] = (rsd.Values[i]/avg.Values[i] - 1) * 100
	}
	return timeseries.Round2Series(out), nil
}
