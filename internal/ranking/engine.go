// Package ranking implements the cross-sectional ranking engines: given a
// list of symbols and a benchmark, it fetches aligned histories, computes a
// relative-strength series per symbol, samples it at calendar horizons, and
// assembles sorted, rated ranking tables (per stock and per industry).
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/relstrength"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// ErrNotEnoughData signals that a ranking run ended with fewer than two
// rankable symbols. It is a legitimate terminal outcome of batch
// processing, not a programming error; the returned table is empty.
var ErrNotEnoughData = errors.New("not enough data to generate rankings")

// DataSource is the bulk data-acquisition boundary the engines depend on.
// Implementations fetch per-symbol data in parallel and tolerate individual
// failures: a failed symbol is absent from the result map and listed in the
// second return value.
type DataSource interface {
	PriceHistories(ctx context.Context, symbols []string, period string, interval model.Interval) (map[string]*model.PriceHistory, []string)
	Financials(ctx context.Context, symbols []string, fields []string, freq model.Frequency) (map[string]*model.FinancialHistory, []string)
	Infos(ctx context.Context, symbols []string) (map[string]model.TickerInfo, []string)
}

// Params configures a ranking run.
type Params struct {
	Benchmark    string
	Period       string
	Interval     model.Interval
	RatingMethod model.RatingMethod

	// MA and Window apply to the Mansfield variant only. Window 0 selects
	// the interval default (252/52/12).
	MA     model.MAType
	Window int

	// MinBars is the insufficient-history threshold; symbols with fewer
	// bars are excluded, not failed. 0 selects the default of 120
	// (about six months of daily bars).
	MinBars int

	Horizons []model.Horizon
}

const defaultMinBars = 120

// normalized fills defaults and validates enumerated fields.
func (p Params) normalized() (Params, error) {
	if p.Benchmark == "" {
		return p, errors.New("benchmark symbol is required")
	}
	if _, err := model.ParseInterval(string(p.Interval)); err != nil {
		return p, err
	}
	if p.RatingMethod == "" {
		p.RatingMethod = model.RatingRank
	}
	if _, err := model.ParseRatingMethod(string(p.RatingMethod)); err != nil {
		return p, err
	}
	if p.MA == "" {
		p.MA = model.MATypeSMA
	}
	if _, err := model.ParseMAType(string(p.MA)); err != nil {
		return p, err
	}
	if p.Window == 0 {
		p.Window = p.Interval.RSWindow()
	}
	if p.Window < 0 {
		return p, errors.New("window must be positive")
	}
	if p.MinBars == 0 {
		p.MinBars = defaultMinBars
	}
	if len(p.Horizons) == 0 {
		p.Horizons = model.DefaultHorizons
	}
	return p, nil
}

// Engine runs cross-sectional rankings against a DataSource.
type Engine struct {
	source DataSource
	log    *zap.Logger
}

// NewEngine creates a ranking engine. A nil logger disables logging.
func NewEngine(source DataSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{source: source, log: logger}
}

// rsFunc computes a full historical RS series for one symbol.
type rsFunc func(closes, closesRef timeseries.Series) (timeseries.Series, error)

// RankIBD ranks symbols by IBD-style quarter-weighted relative strength and
// aggregates them into industry groups (single-member industries dropped).
func (e *Engine) RankIBD(ctx context.Context, symbols []string, p Params) (*model.RankingTable, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}
	return e.rank(ctx, symbols, p, func(closes, ref timeseries.Series) (timeseries.Series, error) {
		return relstrength.RelativeStrength(closes, ref, p.Interval)
	}, true)
}

// RankMansfield ranks symbols by Mansfield relative strength. Aggregation
// stays at the stock level; callers wanting groups use GroupByIndustry.
func (e *Engine) RankMansfield(ctx context.Context, symbols []string, p Params) (*model.RankingTable, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}
	return e.rank(ctx, symbols, p, func(closes, ref timeseries.Series) (timeseries.Series, error) {
		return relstrength.MansfieldRS(closes, ref, p.Window, p.MA)
	}, false)
}

func (e *Engine) rank(ctx context.Context, symbols []string, p Params, rs rsFunc, industries bool) (*model.RankingTable, error) {
	started := time.Now()
	empty := &model.RankingTable{Horizons: p.Horizons}

	refMap, _ := e.source.PriceHistories(ctx, []string{p.Benchmark}, p.Period, p.Interval)
	ref, ok := refMap[p.Benchmark]
	if !ok || len(ref.Bars) == 0 {
		return nil, fmt.Errorf("fetch benchmark %s: no data", p.Benchmark)
	}
	refCloses := closeSeries(ref.Bars)

	histories, failed := e.source.PriceHistories(ctx, symbols, p.Period, p.Interval)
	infos, _ := e.source.Infos(ctx, symbols)

	var rows []model.StockRow
	insufficient := 0
	for _, symbol := range symbols {
		history, ok := histories[symbol]
		if !ok {
			continue // fetch failure, already reported by the source
		}
		if len(history.Bars) < p.MinBars {
			insufficient++
			continue
		}

		closes := closeSeries(history.Bars)
		series, err := rs(closes, refCloses)
		if err != nil {
			e.log.Warn("rs computation failed",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		current := series.Last()
		if math.IsNaN(current) {
			insufficient++
			continue
		}

		info, ok := infos[symbol]
		if !ok {
			info = model.NewTickerInfo(symbol)
		}
		aux := computeAuxiliary(history.Bars, p.Interval)
		rows = append(rows, model.StockRow{
			Symbol:      symbol,
			Sector:      orUnknown(info.Sector),
			Industry:    orUnknown(info.Industry),
			Price:       closes.Last(),
			RS:          current,
			History:     sampleHistory(series, p.Horizons),
			MA50:        aux.MA50,
			MA200:       aux.MA200,
			Position52W: aux.Position52W,
			VolumeRatio: aux.VolumeRatio,
		})
	}

	e.log.Info("ranking run collected",
		zap.Int("symbols", len(symbols)),
		zap.Int("rows", len(rows)),
		zap.Int("failed", len(failed)),
		zap.Int("insufficient", insufficient),
		zap.Duration("elapsed", time.Since(started)))

	if len(rows) < 2 {
		return empty, ErrNotEnoughData
	}

	sortStockRows(rows)
	if err := e.applyStockRatings(rows, p); err != nil {
		return nil, err
	}

	table := &model.RankingTable{Horizons: p.Horizons, Stocks: rows}
	if industries {
		groups := GroupByIndustry(rows, p.Horizons, 2)
		sortIndustryRows(groups)
		if err := e.applyIndustryRatings(groups, p); err != nil {
			return nil, err
		}
		table.Industries = groups
	}
	return table, nil
}

// sampleHistory samples an RS series at each horizon's target date with
// as-of semantics, counting back from the series' latest timestamp.
func sampleHistory(series timeseries.Series, horizons []model.Horizon) []float64 {
	end := series.LastTime()
	out := make([]float64, len(horizons))
	for i, h := range horizons {
		v, ok := timeseries.AsOf(series, h.Before(end))
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// sortStockRows sorts descending by current RS, stable so ties keep input
// order, and assigns Rank 1..N.
func sortStockRows(rows []model.StockRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RS > rows[j].RS })
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

func sortIndustryRows(rows []model.IndustryRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RS > rows[j].RS })
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

func (e *Engine) applyStockRatings(rows []model.StockRow, p Params) error {
	columns := make([][]float64, 1+len(p.Horizons))
	columns[0] = make([]float64, len(rows))
	for i, row := range rows {
		columns[0][i] = row.RS
	}
	for h := range p.Horizons {
		col := make([]float64, len(rows))
		for i, row := range rows {
			col[i] = row.History[h]
		}
		columns[1+h] = col
	}
	for i := range rows {
		rows[i].Ratings = make([]float64, len(columns))
	}
	for c, col := range columns {
		ratings, err := Ratings(col, p.RatingMethod)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].Ratings[c] = ratings[i]
		}
	}
	return nil
}

func (e *Engine) applyIndustryRatings(rows []model.IndustryRow, p Params) error {
	columns := make([][]float64, 1+len(p.Horizons))
	columns[0] = make([]float64, len(rows))
	for i, row := range rows {
		columns[0][i] = row.RS
	}
	for h := range p.Horizons {
		col := make([]float64, len(rows))
		for i, row := range rows {
			col[i] = row.History[h]
		}
		columns[1+h] = col
	}
	for i := range rows {
		rows[i].Ratings = make([]float64, len(columns))
	}
	for c, col := range columns {
		ratings, err := Ratings(col, p.RatingMethod)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].Ratings[c] = ratings[i]
		}
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
