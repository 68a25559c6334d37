package recorder

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordRanking(t *testing.T) {
	r := openTestRecorder(t)

	table := &model.RankingTable{
		Horizons: []model.Horizon{{Label: "1 Month Ago", Months: 1}},
		Stocks: []model.StockRow{
			{Rank: 1, Symbol: "AAA", Sector: "Tech", Industry: "Software",
				Price: 129, RS: 129, Ratings: []float64{99, 75},
				MA50: math.NaN(), MA200: math.NaN(),
				Position52W: 0.9, VolumeRatio: math.NaN()},
			{Rank: 2, Symbol: "BBB", Sector: "Tech", Industry: "Software",
				Price: 50, RS: 100, Ratings: []float64{50, 75},
				MA50: math.NaN(), MA200: math.NaN(),
				Position52W: 0.5, VolumeRatio: math.NaN()},
		},
		Industries: []model.IndustryRow{
			{Rank: 1, Industry: "Software", Sector: "Tech", RS: 114.5,
				Ratings: []float64{99}, Symbols: "AAA,BBB"},
		},
	}
	run := NewRankingRun("ibd", "^GSPC", model.IntervalDaily, model.RatingRank, table)
	require.NotEmpty(t, run.ID)
	require.NoError(t, r.RecordRanking(run))

	var count int
	require.NoError(t, r.db.QueryRow(
		`SELECT COUNT(*) FROM stock_rows WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 2, count)

	require.NoError(t, r.db.QueryRow(
		`SELECT COUNT(*) FROM industry_rows WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 1, count)

	// NaN indicators land as NULL
	var ma50 interface{}
	require.NoError(t, r.db.QueryRow(
		`SELECT ma50 FROM stock_rows WHERE run_id = ? AND symbol = 'AAA'`, run.ID).Scan(&ma50))
	assert.Nil(t, ma50)

	var formula string
	require.NoError(t, r.db.QueryRow(
		`SELECT formula FROM ranking_runs WHERE id = ?`, run.ID).Scan(&formula))
	assert.Equal(t, "ibd", formula)
}

func TestRecordFinancial(t *testing.T) {
	r := openTestRecorder(t)

	table := &model.FinancialTable{
		Rows: []model.FinancialRow{
			{Rank: 1, Symbol: "AAA", Sector: "Tech", Industry: "Software",
				Price: 50, EPSRS: 41.67, RevRS: math.NaN(),
				EPSQoQ: 0, EPSYoY: 100, TTMEPS: 8, TTMPE: math.NaN(),
				EPSRating: 99, RevRating: math.NaN()},
		},
	}
	run := NewFinancialRun(model.RatingRank, table)
	require.NoError(t, r.RecordFinancial(run))

	var count int
	require.NoError(t, r.db.QueryRow(
		`SELECT COUNT(*) FROM financial_rows WHERE run_id = ?`, run.ID).Scan(&count))
	assert.Equal(t, 1, count)

	var formula string
	require.NoError(t, r.db.QueryRow(
		`SELECT formula FROM ranking_runs WHERE id = ?`, run.ID).Scan(&formula))
	assert.Equal(t, "financial", formula)
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	assert.NoError(t, n.RecordRanking(&RankingRun{Table: &model.RankingTable{}}))
	assert.NoError(t, n.RecordFinancial(&FinancialRun{Table: &model.FinancialTable{}}))
	assert.NoError(t, n.Close())
}

func TestRunIDsUnique(t *testing.T) {
	a := NewRankingRun("ibd", "^GSPC", model.IntervalDaily, model.RatingRank, &model.RankingTable{})
	b := NewRankingRun("ibd", "^GSPC", model.IntervalDaily, model.RatingRank, &model.RankingTable{})
	assert.NotEqual(t, a.ID, b.ID)
}
