package model

import (
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceHistory holds raw price data for one symbol, ascending in time.
type PriceHistory struct {
	Symbol    string
	Interval  Interval
	Bars      []OHLCV
	FetchedAt time.Time
}

// FinancialHistory holds statement data for one symbol, indexed by
// period-end date (ascending). Metrics maps a field name (e.g. "Basic EPS")
// to values parallel to Dates; absent values are NaN.
type FinancialHistory struct {
	Symbol    string
	Frequency Frequency
	Dates     []time.Time
	Metrics   map[string][]float64
}

// Metric returns the values for a field, or false if the field is absent.
func (f *FinancialHistory) Metric(field string) ([]float64, bool) {
	v, ok := f.Metrics[field]
	return v, ok
}

// TickerInfo is descriptive metadata for one symbol. Numeric fields default
// to NaN and string fields to "" when the upstream source omits them.
type TickerInfo struct {
	Symbol            string
	QuoteType         string
	Sector            string
	Industry          string
	PreviousClose     float64
	TrailingEPS       float64
	RevenuePerShare   float64
	TrailingPE        float64
	MarketCap         float64
	SharesOutstanding float64
}

// NewTickerInfo returns a TickerInfo with all numeric fields set to NaN.
func NewTickerInfo(symbol string) TickerInfo {
	nan := math.NaN()
	return TickerInfo{
		Symbol:            symbol,
		PreviousClose:     nan,
		TrailingEPS:       nan,
		RevenuePerShare:   nan,
		TrailingPE:        nan,
		MarketCap:         nan,
		SharesOutstanding: nan,
	}
}
