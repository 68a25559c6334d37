package notifier

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

func sampleTable() *model.RankingTable {
	return &model.RankingTable{
		Horizons: []model.Horizon{{Label: "1 Month Ago", Months: 1}},
		Stocks: []model.StockRow{
			{Rank: 1, Symbol: "AAA", Price: 129.5, RS: 129.12, Ratings: []float64{99, 75}},
			{Rank: 2, Symbol: "BBB", Price: math.NaN(), RS: 100, Ratings: []float64{50, 75}},
			{Rank: 3, Symbol: "CCC", Price: 10, RS: 90, Ratings: nil},
		},
		Industries: []model.IndustryRow{
			{Rank: 1, Industry: "Software", Sector: "Tech", RS: 114.56, Symbols: "AAA,BBB"},
		},
	}
}

func TestFormatRankingReport(t *testing.T) {
	out := FormatRankingReport(sampleTable(), "ibd", 10)

	assert.Contains(t, out, "IBD")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "129.12")
	assert.Contains(t, out, "Software")
	assert.Contains(t, out, "AAA,BBB")
	assert.Contains(t, out, "Top 3 of 3 stocks")
}

func TestFormatRankingReportTopN(t *testing.T) {
	out := FormatRankingReport(sampleTable(), "ibd", 2)
	assert.Contains(t, out, "Top 2 of 3 stocks")
	assert.NotContains(t, out, "CCC")
}

func TestFormatRankingReportNaN(t *testing.T) {
	out := FormatRankingReport(sampleTable(), "ibd", 10)
	// BBB has no price, CCC has no ratings
	assert.Contains(t, out, "$-")
	lines := strings.Split(out, "\n")
	var cccLine string
	for _, l := range lines {
		if strings.Contains(l, "CCC") {
			cccLine = l
		}
	}
	assert.Contains(t, cccLine, "rating -")
}

func TestFormatFinancialReport(t *testing.T) {
	table := &model.FinancialTable{
		Rows: []model.FinancialRow{
			{Rank: 1, Symbol: "AAA", EPSRS: 41.67, RevRS: math.NaN(), EPSQoQ: 12.5},
		},
	}
	out := FormatFinancialReport(table, 5)
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "41.67")
	assert.Contains(t, out, "Rev RS -")
	assert.Contains(t, out, "12.5")
}

func TestFormatRunError(t *testing.T) {
	out := FormatRunError("ibd", assert.AnError)
	assert.Contains(t, out, "IBD")
	assert.Contains(t, out, assert.AnError.Error())
}
