package model

// StockRow is one ranked symbol in a ranking table. Rows are assembled once
// per symbol per run and never mutated outside the ranking pipeline.
type StockRow struct {
	Rank     int
	Symbol   string
	Sector   string
	Industry string
	Price    float64

	// RS is the current relative strength; History holds RS sampled at the
	// table's horizons (parallel to RankingTable.Horizons). Ratings holds the
	// 1-99 rating for RS followed by one per horizon; NaN means missing.
	RS      float64
	History []float64
	Ratings []float64

	// Auxiliary indicators.
	MA50        float64
	MA200       float64
	Position52W float64
	VolumeRatio float64
}

// IndustryRow aggregates the stock rows sharing an industry.
type IndustryRow struct {
	Rank     int
	Industry string
	Sector   string
	RS       float64
	History  []float64
	Ratings  []float64

	// Symbols is the comma-joined constituents, sorted by descending RS.
	Symbols string
}

// RankingTable is the ordered output of a ranking run: stocks sorted
// descending by current RS with Rank a permutation of 1..N, plus the
// industry-level aggregation when the ranking variant produces one.
type RankingTable struct {
	Horizons   []Horizon
	Stocks     []StockRow
	Industries []IndustryRow
}

// Empty reports whether the run produced no rankable rows.
func (t *RankingTable) Empty() bool { return len(t.Stocks) == 0 }

// FinancialRow is one symbol in a fundamentals ranking table.
type FinancialRow struct {
	Rank     int
	Symbol   string
	Sector   string
	Industry string
	Price    float64

	EPSQoQ  float64 // latest quarter-over-quarter EPS growth (%)
	EPSQoQ2 float64 // one quarter earlier
	EPSQoQ3 float64 // two quarters earlier
	EPSYoY  float64 // latest year-over-year EPS growth (%)
	EPSYoY2 float64 // one quarter earlier

	EPSRS float64
	RevRS float64

	TTMEPS float64
	TTMRPS float64
	TTMPE  float64

	EPSRating float64
	RevRating float64
}

// FinancialTable is the output of a fundamentals ranking run, sorted
// descending by EPS RS.
type FinancialTable struct {
	Rows []FinancialRow
}

// Empty reports whether the run produced no rankable rows.
func (t *FinancialTable) Empty() bool { return len(t.Rows) == 0 }
