// Package collector acquires market data: price histories, financial
// statements, and ticker metadata. A Fetcher handles one symbol at a time;
// BulkFetcher fans a symbol list out over a worker pool and tolerates
// per-symbol failures.
package collector

import (
	"context"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// Fetcher defines the interface for fetching market data for one symbol.
type Fetcher interface {
	// FetchPriceHistory returns OHLCV bars ascending in time. period is a
	// lookback like "2y" or "6mo"; interval selects bar spacing.
	FetchPriceHistory(ctx context.Context, symbol, period string, interval model.Interval) (*model.PriceHistory, error)

	// FetchFinancials returns statement series for the named fields at the
	// given reporting frequency. Fields the source does not report are
	// absent from the result's Metrics map.
	FetchFinancials(ctx context.Context, symbol string, fields []string, freq model.Frequency) (*model.FinancialHistory, error)

	// FetchInfo returns descriptive metadata for the symbol.
	FetchInfo(ctx context.Context, symbol string) (model.TickerInfo, error)

	Name() string
}
