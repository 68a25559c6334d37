package relstrength

import (
	"math"
	"sort"

	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// WeightedMetric aggregates per-symbol metric series into a single
// benchmark series, weighting each symbol (e.g. by market cap or shares
// outstanding). Series are right-aligned on their most recent period, with
// shorter histories padded with NaN on the left; each column is summed
// ignoring NaN and divided by the total participating weight.
//
// Symbols with a zero, negative, or missing weight, or with an empty
// metric series, are skipped and returned in excluded; they are a
// diagnostic, not a failure. A zero total weight yields an empty series.
func WeightedMetric(metrics map[string]timeseries.Series, weights map[string]float64) (timeseries.Series, []string) {
	symbols := make([]string, 0, len(metrics))
	for sym := range metrics {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var included []string
	var excluded []string
	var totalWeight float64
	maxLen := 0
	var template timeseries.Series

	for _, sym := range symbols {
		s := metrics[sym]
		w, ok := weights[sym]
		if !ok || math.IsNaN(w) || w <= 0 || s.Empty() {
			excluded = append(excluded, sym)
			continue
		}
		included = append(included, sym)
		totalWeight += w
		if s.Len() > maxLen {
			maxLen = s.Len()
			template = s
		}
	}
	if totalWeight == 0 || maxLen == 0 {
		return timeseries.Series{}, excluded
	}

	sums := make([]float64, maxLen)
	for _, sym := range included {
		s := metrics[sym]
		w := weights[sym]
		offset := maxLen - s.Len() // right-align on the latest period
		for i, v := range s.Values {
			if !math.IsNaN(v) {
				sums[offset+i] += v * w
			}
		}
	}
	for i := range sums {
		sums[i] /= totalWeight
	}

	return timeseries.Series{Times: template.Times, Values: sums}, excluded
}
