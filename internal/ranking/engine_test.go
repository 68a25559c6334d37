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

var testBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeSource is an in-memory DataSource; symbols absent from a map are
// reported as failed.
type fakeSource struct {
	prices map[string]*model.PriceHistory
	fins   map[model.Frequency]map[string]*model.FinancialHistory
	infos  map[string]model.TickerInfo
}

func (f *fakeSource) PriceHistories(_ context.Context, symbols []string, _ string, _ model.Interval) (map[string]*model.PriceHistory, []string) {
	out := make(map[string]*model.PriceHistory)
	var failed []string
	for _, s := range symbols {
		if h, ok := f.prices[s]; ok {
			out[s] = h
		} else {
			failed = append(failed, s)
		}
	}
	return out, failed
}

func (f *fakeSource) Financials(_ context.Context, symbols []string, _ []string, freq model.Frequency) (map[string]*model.FinancialHistory, []string) {
	out := make(map[string]*model.FinancialHistory)
	var failed []string
	for _, s := range symbols {
		if h, ok := f.fins[freq][s]; ok {
			out[s] = h
		} else {
			failed = append(failed, s)
		}
	}
	return out, failed
}

func (f *fakeSource) Infos(_ context.Context, symbols []string) (map[string]model.TickerInfo, []string) {
	out := make(map[string]model.TickerInfo)
	var failed []string
	for _, s := range symbols {
		if info, ok := f.infos[s]; ok {
			out[s] = info
		} else {
			failed = append(failed, s)
		}
	}
	return out, failed
}

// history builds a daily price history where close[i] = start + step*i.
func history(symbol string, start, step float64, n int) *model.PriceHistory {
	bars := make([]model.OHLCV, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		bars[i] = model.OHLCV{
			Time:   testBase.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return &model.PriceHistory{Symbol: symbol, Interval: model.IntervalDaily, Bars: bars}
}

func equity(symbol, sector, industry string) model.TickerInfo {
	info := model.NewTickerInfo(symbol)
	info.QuoteType = "EQUITY"
	info.Sector = sector
	info.Industry = industry
	return info
}

func priceSource() *fakeSource {
	return &fakeSource{
		prices: map[string]*model.PriceHistory{
			"^X":  history("^X", 100, 0, 30),
			"AAA": history("AAA", 100, 1, 30),
			"BBB": history("BBB", 50, 0, 30),
			"DDD": history("DDD", 10, 0, 2), // too short
		},
		infos: map[string]model.TickerInfo{
			"AAA": equity("AAA", "Tech", "Software"),
			"BBB": equity("BBB", "Tech", "Software"),
			"DDD": equity("DDD", "Energy", "Solo"),
		},
	}
}

func testParams() Params {
	return Params{
		Benchmark: "^X",
		Period:    "1y",
		Interval:  model.IntervalDaily,
		MinBars:   5,
		Horizons:  []model.Horizon{{Label: "1 Week Ago", Weeks: 1}},
	}
}

func TestRankIBD(t *testing.T) {
	engine := NewEngine(priceSource(), nil)
	table, err := engine.RankIBD(context.Background(), []string{"AAA", "BBB", "CCC", "DDD"}, testParams())
	require.NoError(t, err)

	require.Len(t, table.Stocks, 2, "failed and short symbols are excluded")
	assert.Equal(t, "AAA", table.Stocks[0].Symbol)
	assert.Equal(t, "BBB", table.Stocks[1].Symbol)
	assert.Equal(t, 1, table.Stocks[0].Rank)
	assert.Equal(t, 2, table.Stocks[1].Rank)

	// flat stock vs flat benchmark performs identically
	assert.Equal(t, 100.0, table.Stocks[1].RS)
	assert.Greater(t, table.Stocks[0].RS, 100.0)

	// ratings: current column plus one per horizon
	require.Len(t, table.Stocks[0].Ratings, 2)
	assert.Equal(t, 99.0, table.Stocks[0].Ratings[0])
	assert.Equal(t, 50.0, table.Stocks[1].Ratings[0])

	// horizon sample exists inside the history
	require.Len(t, table.Stocks[0].History, 1)
	assert.False(t, math.IsNaN(table.Stocks[0].History[0]))

	require.Len(t, table.Industries, 1)
	assert.Equal(t, "Software", table.Industries[0].Industry)
	assert.Equal(t, "AAA,BBB", table.Industries[0].Symbols)
	assert.Equal(t, 1, table.Industries[0].Rank)
}

func TestRankIBDNotEnoughData(t *testing.T) {
	engine := NewEngine(priceSource(), nil)
	table, err := engine.RankIBD(context.Background(), []string{"AAA"}, testParams())
	require.ErrorIs(t, err, ErrNotEnoughData)
	require.NotNil(t, table)
	assert.True(t, table.Empty())
}

func TestRankIBDBenchmarkMissing(t *testing.T) {
	engine := NewEngine(priceSource(), nil)
	p := testParams()
	p.Benchmark = "NOPE"
	_, err := engine.RankIBD(context.Background(), []string{"AAA", "BBB"}, p)
	assert.Error(t, err)
}

func TestRankIBDInvalidParams(t *testing.T) {
	engine := NewEngine(priceSource(), nil)

	p := testParams()
	p.Interval = model.Interval("5m")
	_, err := engine.RankIBD(context.Background(), []string{"AAA", "BBB"}, p)
	assert.Error(t, err)

	p = testParams()
	p.RatingMethod = model.RatingMethod("percentile")
	_, err = engine.RankIBD(context.Background(), []string{"AAA", "BBB"}, p)
	assert.Error(t, err)
}

func TestRankMansfield(t *testing.T) {
	engine := NewEngine(priceSource(), nil)
	p := testParams()
	p.Window = 5
	table, err := engine.RankMansfield(context.Background(), []string{"AAA", "BBB"}, p)
	require.NoError(t, err)

	require.Len(t, table.Stocks, 2)
	assert.Equal(t, "AAA", table.Stocks[0].Symbol)
	assert.Greater(t, table.Stocks[0].RS, 0.0)
	assert.Equal(t, 0.0, table.Stocks[1].RS, "flat stock vs flat benchmark centers at zero")
	assert.Empty(t, table.Industries, "mansfield ranks stocks only")
}

func TestRankIBDUnknownInfoDefaults(t *testing.T) {
	src := priceSource()
	delete(src.infos, "BBB")
	engine := NewEngine(src, nil)
	table, err := engine.RankIBD(context.Background(), []string{"AAA", "BBB"}, testParams())
	require.NoError(t, err)
	require.Len(t, table.Stocks, 2)
	assert.Equal(t, "Unknown", table.Stocks[1].Sector)
	assert.Equal(t, "Unknown", table.Stocks[1].Industry)
}

func TestRankIBDIdempotent(t *testing.T) {
	engine := NewEngine(priceSource(), nil)
	a, err := engine.RankIBD(context.Background(), []string{"AAA", "BBB"}, testParams())
	require.NoError(t, err)
	b, err := engine.RankIBD(context.Background(), []string{"AAA", "BBB"}, testParams())
	require.NoError(t, err)
	require.Len(t, b.Stocks, len(a.Stocks))
	for i := range a.Stocks {
		assert.Equal(t, a.Stocks[i].Symbol, b.Stocks[i].Symbol)
		assert.Equal(t, a.Stocks[i].Rank, b.Stocks[i].Rank)
		assert.Equal(t, a.Stocks[i].RS, b.Stocks[i].RS)
		assert.Equal(t, a.Stocks[i].Ratings[0], b.Stocks[i].Ratings[0])
	}
}
