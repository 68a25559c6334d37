package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// GroupByIndustry aggregates stock rows sharing an industry: numeric RS
// columns are averaged (rounded to 2 decimals), the sector is the first
// occurrence, and the constituent symbols are comma-joined sorted by their
// own descending RS. Groups with fewer than minMembers constituents are
// dropped.
func GroupByIndustry(stocks []model.StockRow, horizons []model.Horizon, minMembers int) []model.IndustryRow {
	type group struct {
		sector  string
		members []model.StockRow
	}
	groups := make(map[string]*group)
	var order []string
	for _, row := range stocks {
		g, ok := groups[row.Industry]
		if !ok {
			g = &group{sector: row.Sector}
			groups[row.Industry] = g
			order = append(order, row.Industry)
		}
		g.members = append(g.members, row)
	}

	var out []model.IndustryRow
	for _, industry := range order {
		g := groups[industry]
		if len(g.members) < minMembers {
			continue
		}

		members := make([]model.StockRow, len(g.members))
		copy(members, g.members)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].RS > members[j].RS
		})
		symbols := make([]string, len(members))
		for i, m := range members {
			symbols[i] = m.Symbol
		}

		row := model.IndustryRow{
			Industry: industry,
			Sector:   g.sector,
			RS:       timeseries.Round2(meanOf(g.members, func(r model.StockRow) float64 { return r.RS })),
			History:  make([]float64, len(horizons)),
			Symbols:  strings.Join(symbols, ","),
		}
		for h := range horizons {
			row.History[h] = timeseries.Round2(meanOf(g.members, func(r model.StockRow) float64 { return r.History[h] }))
		}
		out = append(out, row)
	}
	return out
}

// meanOf is a plain mean: any NaN member makes the group value NaN, which
// in turn excludes it from ratings.
func meanOf(rows []model.StockRow, field func(model.StockRow) float64) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, r := range rows {
		sum += field(r)
	}
	return sum / float64(len(rows))
}
