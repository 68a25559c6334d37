package ranking

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

func statement(symbol string, freq model.Frequency, spacingMonths int, eps ...float64) *model.FinancialHistory {
	dates := make([]time.Time, len(eps))
	for i := range eps {
		dates[i] = testBase.AddDate(0, spacingMonths*i, 0)
	}
	return &model.FinancialHistory{
		Symbol:    symbol,
		Frequency: freq,
		Dates:     dates,
		Metrics:   map[string][]float64{FieldBasicEPS: eps},
	}
}

func financialSource() *fakeSource {
	grower := equity("AAA", "Tech", "Software")
	grower.SharesOutstanding = 100
	grower.MarketCap = 1000
	grower.PreviousClose = 50

	flat := equity("BBB", "Tech", "Software")
	flat.SharesOutstanding = 100
	flat.MarketCap = 1000

	etf := model.NewTickerInfo("SPY")
	etf.QuoteType = "ETF"

	return &fakeSource{
		infos: map[string]model.TickerInfo{
			"AAA": grower,
			"BBB": flat,
			"SPY": etf,
		},
		fins: map[model.Frequency]map[string]*model.FinancialHistory{
			model.FrequencyQuarterly: {
				"AAA": statement("AAA", model.FrequencyQuarterly, 3, 1, 1, 1, 1, 2, 2, 2, 2),
				"BBB": statement("BBB", model.FrequencyQuarterly, 3, 1, 1, 1, 1, 1, 1, 1, 1),
			},
			model.FrequencyAnnual: {
				"AAA": statement("AAA", model.FrequencyAnnual, 12, 4, 4, 8),
				"BBB": statement("BBB", model.FrequencyAnnual, 12, 4, 4, 4),
			},
		},
	}
}

func TestRankFinancial(t *testing.T) {
	engine := NewEngine(financialSource(), nil)
	table, err := engine.RankFinancial(context.Background(), []string{"AAA", "BBB", "SPY"}, Params{})
	require.NoError(t, err)

	require.Len(t, table.Rows, 2, "non-equities are excluded")
	assert.Equal(t, "AAA", table.Rows[0].Symbol)
	assert.Equal(t, "BBB", table.Rows[1].Symbol)
	assert.Equal(t, 1, table.Rows[0].Rank)

	// grower beats the shared benchmark, the flat stock trails it
	assert.Greater(t, table.Rows[0].EPSRS, 0.0)
	assert.Less(t, table.Rows[1].EPSRS, 0.0)

	// latest quarter growth columns
	assert.InDelta(t, 0.0, table.Rows[0].EPSQoQ, 0.01)
	assert.InDelta(t, 100.0, table.Rows[0].EPSYoY, 0.01)

	// no revenue data was supplied
	assert.True(t, math.IsNaN(table.Rows[0].RevRS))
	assert.True(t, math.IsNaN(table.Rows[0].RevRating))

	assert.Equal(t, 99.0, table.Rows[0].EPSRating)
	assert.Equal(t, 50.0, table.Rows[1].EPSRating)

	assert.Equal(t, 50.0, table.Rows[0].Price)
}

func TestRankFinancialNotEnoughData(t *testing.T) {
	engine := NewEngine(financialSource(), nil)
	table, err := engine.RankFinancial(context.Background(), []string{"SPY"}, Params{})
	require.ErrorIs(t, err, ErrNotEnoughData)
	require.NotNil(t, table)
	assert.True(t, table.Empty())
}

func TestRankFinancialInvalidRatingMethod(t *testing.T) {
	engine := NewEngine(financialSource(), nil)
	_, err := engine.RankFinancial(context.Background(), []string{"AAA", "BBB"}, Params{
		RatingMethod: model.RatingMethod("percentile"),
	})
	assert.Error(t, err)
}
