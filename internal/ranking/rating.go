package ranking

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// Ratings maps a column of RS values to 1-99 ratings. The `rank` method
// scales the percentile rank (average ties) onto [1, 99]; the `qcut`
// method partitions the column into 99 quantile buckets with duplicate
// edges dropped. NaN inputs produce NaN ratings, never an error.
func Ratings(values []float64, method model.RatingMethod) ([]float64, error) {
	switch method {
	case model.RatingRank:
		return rankRatings(values), nil
	case model.RatingQCut:
		return qcutRatings(values), nil
	}
	return nil, fmt.Errorf("invalid rating method %q: must be 'rank' or 'qcut'", method)
}

func rankRatings(values []float64) []float64 {
	valid := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			valid++
		}
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || valid == 0 {
			out[i] = math.NaN()
			continue
		}
		less, equal := 0, 0
		for _, w := range values {
			if math.IsNaN(w) {
				continue
			}
			switch {
			case w < v:
				less++
			case w == v:
				equal++
			}
		}
		// average rank for ties, as a fraction of the valid count
		rank := float64(less) + float64(equal+1)/2
		pct := rank / float64(valid)
		out[i] = math.Round(pct*98 + 1)
	}
	return out
}

func qcutRatings(values []float64) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	out := make([]float64, len(values))
	if len(sorted) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sort.Float64s(sorted)

	// 100 quantile edges for 99 buckets, duplicates dropped.
	edges := make([]float64, 0, 100)
	for i := 0; i <= 99; i++ {
		q := stat.Quantile(float64(i)/99, stat.LinInterp, sorted, nil)
		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}

	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		if len(edges) < 2 {
			out[i] = 1 // degenerate column: everything in one bucket
			continue
		}
		// buckets are (edges[j], edges[j+1]], lowest edge inclusive
		k := sort.SearchFloat64s(edges, v) // first edge >= v
		bucket := k - 1
		if bucket < 0 {
			bucket = 0
		}
		if bucket > len(edges)-2 {
			bucket = len(edges) - 2
		}
		out[i] = float64(bucket + 1)
	}
	return out
}
