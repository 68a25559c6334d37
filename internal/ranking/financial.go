package ranking

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/relstrength"
	"github.com/yorkjong/vistock-sub000/internal/timeseries"
)

// Statement field names as the upstream sources report them.
const (
	FieldBasicEPS         = "Basic EPS"
	FieldOperatingRevenue = "Operating Revenue"
)

// RankFinancial ranks symbols by fundamentals relative strength: EPS and
// revenue growth measured against a benchmark aggregated from the universe
// itself (EPS weighted by shares outstanding, revenue by market cap).
// Non-equity symbols (ETFs, indices) are excluded up front. Only
// RatingMethod is read from Params; price parameters do not apply.
func (e *Engine) RankFinancial(ctx context.Context, symbols []string, p Params) (*model.FinancialTable, error) {
	if p.RatingMethod == "" {
		p.RatingMethod = model.RatingRank
	}
	if _, err := model.ParseRatingMethod(string(p.RatingMethod)); err != nil {
		return nil, err
	}
	started := time.Now()

	infos, _ := e.source.Infos(ctx, symbols)
	var equities []string
	for _, symbol := range symbols {
		info, ok := infos[symbol]
		if !ok || info.QuoteType != "EQUITY" {
			continue
		}
		equities = append(equities, symbol)
	}

	fields := []string{FieldBasicEPS, FieldOperatingRevenue}
	quarterly, qFailed := e.source.Financials(ctx, equities, fields, model.FrequencyQuarterly)
	annual, aFailed := e.source.Financials(ctx, equities, fields, model.FrequencyAnnual)

	qEPS := metricSeriesBySymbol(quarterly, FieldBasicEPS)
	aEPS := metricSeriesBySymbol(annual, FieldBasicEPS)
	qRev := metricSeriesBySymbol(quarterly, FieldOperatingRevenue)
	aRev := metricSeriesBySymbol(annual, FieldOperatingRevenue)

	epsWeights := make(map[string]float64, len(equities))
	revWeights := make(map[string]float64, len(equities))
	for _, symbol := range equities {
		epsWeights[symbol] = infos[symbol].SharesOutstanding
		revWeights[symbol] = infos[symbol].MarketCap
	}
	qEPSBench, epsExcluded := relstrength.WeightedMetric(qEPS, epsWeights)
	aEPSBench, _ := relstrength.WeightedMetric(aEPS, epsWeights)
	qRevBench, revExcluded := relstrength.WeightedMetric(qRev, revWeights)
	aRevBench, _ := relstrength.WeightedMetric(aRev, revWeights)
	if len(epsExcluded) > 0 || len(revExcluded) > 0 {
		e.log.Debug("symbols excluded from benchmark aggregation",
			zap.Strings("eps", epsExcluded), zap.Strings("revenue", revExcluded))
	}
	if qEPSBench.Empty() || aEPSBench.Empty() {
		return &model.FinancialTable{}, ErrNotEnoughData
	}

	var rows []model.FinancialRow
	for _, symbol := range equities {
		q, qOK := qEPS[symbol]
		a, aOK := aEPS[symbol]
		if !qOK || !aOK {
			continue
		}
		epsRS, err := relstrength.MetricStrengthVsBenchmark(q, a, qEPSBench, aEPSBench)
		if err != nil || epsRS.Empty() || math.IsNaN(epsRS.Last()) {
			continue
		}

		info := infos[symbol]
		row := model.FinancialRow{
			Symbol:   symbol,
			Sector:   orUnknown(info.Sector),
			Industry: orUnknown(info.Industry),
			Price:    info.PreviousClose,
			EPSRS:    timeseries.Round2(epsRS.Last()),
			RevRS:    math.NaN(),
			TTMEPS:   info.TrailingEPS,
			TTMRPS:   info.RevenuePerShare,
			TTMPE:    info.TrailingPE,
		}

		if rq, ok := qRev[symbol]; ok {
			if ra, ok := aRev[symbol]; ok && !qRevBench.Empty() && !aRevBench.Empty() {
				if revRS, err := relstrength.MetricStrengthVsBenchmark(rq, ra, qRevBench, aRevBench); err == nil && !revRS.Empty() {
					row.RevRS = timeseries.Round2(revRS.Last())
				}
			}
		}

		if qoq, err := relstrength.QoQGrowth(q); err == nil {
			row.EPSQoQ = growthPercent(qoq, 0)
			row.EPSQoQ2 = growthPercent(qoq, 1)
			row.EPSQoQ3 = growthPercent(qoq, 2)
		}
		if yoy, err := relstrength.YoYGrowth(q, model.FrequencyQuarterly); err == nil {
			row.EPSYoY = growthPercent(yoy, 0)
			row.EPSYoY2 = growthPercent(yoy, 1)
		}

		rows = append(rows, row)
	}

	e.log.Info("financial ranking collected",
		zap.Int("symbols", len(symbols)),
		zap.Int("equities", len(equities)),
		zap.Int("rows", len(rows)),
		zap.Int("failed", len(qFailed)+len(aFailed)),
		zap.Duration("elapsed", time.Since(started)))

	if len(rows) < 2 {
		return &model.FinancialTable{}, ErrNotEnoughData
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].EPSRS > rows[j].EPSRS })
	epsCol := make([]float64, len(rows))
	revCol := make([]float64, len(rows))
	for i := range rows {
		rows[i].Rank = i + 1
		epsCol[i] = rows[i].EPSRS
		revCol[i] = rows[i].RevRS
	}
	epsRatings, err := Ratings(epsCol, p.RatingMethod)
	if err != nil {
		return nil, err
	}
	revRatings, err := Ratings(revCol, p.RatingMethod)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].EPSRating = epsRatings[i]
		rows[i].RevRating = revRatings[i]
	}

	return &model.FinancialTable{Rows: rows}, nil
}

// metricSeriesBySymbol extracts one statement field from each history as a
// time series; symbols missing the field are omitted.
func metricSeriesBySymbol(histories map[string]*model.FinancialHistory, field string) map[string]timeseries.Series {
	out := make(map[string]timeseries.Series, len(histories))
	for symbol, h := range histories {
		values, ok := h.Metric(field)
		if !ok || len(values) == 0 {
			continue
		}
		out[symbol] = timeseries.Series{Times: h.Dates, Values: values}
	}
	return out
}

// growthPercent reads a growth fraction k periods back from the end of the
// series and scales it to a rounded percentage. Out-of-range reads are NaN.
func growthPercent(s timeseries.Series, k int) float64 {
	i := s.Len() - 1 - k
	if i < 0 {
		return math.NaN()
	}
	return timeseries.Round2(s.Values[i] * 100)
}
