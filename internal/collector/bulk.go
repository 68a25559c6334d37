package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

const (
	defaultWorkers     = 8
	defaultTaskTimeout = 45 * time.Second
)

// BulkFetcher fans per-symbol fetches out over a fixed worker pool. One
// symbol failing never fails the batch: failed symbols are absent from the
// result map and listed separately.
type BulkFetcher struct {
	fetcher Fetcher
	workers int
	timeout time.Duration
	log     *zap.Logger
}

// NewBulkFetcher wraps a Fetcher with a worker pool. workers <= 0 selects
// the default of 8; a nil logger disables logging.
func NewBulkFetcher(fetcher Fetcher, workers int, logger *zap.Logger) *BulkFetcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkFetcher{
		fetcher: fetcher,
		workers: workers,
		timeout: defaultTaskTimeout,
		log:     logger,
	}
}

// forEach runs fn for every symbol on the worker pool and splits the
// symbols into succeeded and failed. fn stores its own result.
func (b *BulkFetcher) forEach(ctx context.Context, symbols []string, what string, fn func(ctx context.Context, symbol string) error) []string {
	tasks := make(chan string)
	var mu sync.Mutex
	var failed []string
	var wg sync.WaitGroup

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range tasks {
				taskCtx, cancel := context.WithTimeout(ctx, b.timeout)
				err := fn(taskCtx, symbol)
				cancel()
				if err != nil {
					b.log.Warn("fetch failed",
						zap.String("what", what),
						zap.String("symbol", symbol),
						zap.String("source", b.fetcher.Name()),
						zap.Error(err))
					mu.Lock()
					failed = append(failed, symbol)
					mu.Unlock()
				}
			}
		}()
	}
	for _, symbol := range symbols {
		tasks <- symbol
	}
	close(tasks)
	wg.Wait()
	return failed
}

// PriceHistories fetches price history for each symbol in parallel.
func (b *BulkFetcher) PriceHistories(ctx context.Context, symbols []string, period string, interval model.Interval) (map[string]*model.PriceHistory, []string) {
	out := make(map[string]*model.PriceHistory, len(symbols))
	var mu sync.Mutex
	failed := b.forEach(ctx, symbols, "prices", func(ctx context.Context, symbol string) error {
		h, err := b.fetcher.FetchPriceHistory(ctx, symbol, period, interval)
		if err != nil {
			return err
		}
		mu.Lock()
		out[symbol] = h
		mu.Unlock()
		return nil
	})
	return out, failed
}

// Financials fetches statement series for each symbol in parallel.
func (b *BulkFetcher) Financials(ctx context.Context, symbols []string, fields []string, freq model.Frequency) (map[string]*model.FinancialHistory, []string) {
	out := make(map[string]*model.FinancialHistory, len(symbols))
	var mu sync.Mutex
	failed := b.forEach(ctx, symbols, "financials", func(ctx context.Context, symbol string) error {
		h, err := b.fetcher.FetchFinancials(ctx, symbol, fields, freq)
		if err != nil {
			return err
		}
		mu.Lock()
		out[symbol] = h
		mu.Unlock()
		return nil
	})
	return out, failed
}

// Infos fetches ticker metadata for each symbol in parallel.
func (b *BulkFetcher) Infos(ctx context.Context, symbols []string) (map[string]model.TickerInfo, []string) {
	out := make(map[string]model.TickerInfo, len(symbols))
	var mu sync.Mutex
	failed := b.forEach(ctx, symbols, "infos", func(ctx context.Context, symbol string) error {
		info, err := b.fetcher.FetchInfo(ctx, symbol)
		if err != nil {
			return err
		}
		mu.Lock()
		out[symbol] = info
		mu.Unlock()
		return nil
	})
	return out, failed
}
