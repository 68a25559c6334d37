package collector

import (
	"context"
	"sync"
	"time"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// CachedFetcher decorates a Fetcher with an in-memory TTL cache so that
// repeated runs within a short window (scheduler retries, bot commands) do
// not hammer the upstream source. Financials are not cached; they change
// quarterly and are fetched far less often.
type CachedFetcher struct {
	inner Fetcher
	ttl   time.Duration

	mu     sync.RWMutex
	prices map[string]cachedPrices
	infos  map[string]cachedInfo
}

type cachedPrices struct {
	history *model.PriceHistory
	at      time.Time
}

type cachedInfo struct {
	info model.TickerInfo
	at   time.Time
}

// NewCachedFetcher wraps a Fetcher. ttl <= 0 selects 15 minutes.
func NewCachedFetcher(inner Fetcher, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedFetcher{
		inner:  inner,
		ttl:    ttl,
		prices: make(map[string]cachedPrices),
		infos:  make(map[string]cachedInfo),
	}
}

func (c *CachedFetcher) Name() string { return c.inner.Name() + "+cache" }

func priceKey(symbol, period string, interval model.Interval) string {
	return symbol + "|" + period + "|" + string(interval)
}

func (c *CachedFetcher) FetchPriceHistory(ctx context.Context, symbol, period string, interval model.Interval) (*model.PriceHistory, error) {
	key := priceKey(symbol, period, interval)
	c.mu.RLock()
	entry, ok := c.prices[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.at) < c.ttl {
		return entry.history, nil
	}

	history, err := c.inner.FetchPriceHistory(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.prices[key] = cachedPrices{history: history, at: time.Now()}
	c.mu.Unlock()
	return history, nil
}

func (c *CachedFetcher) FetchFinancials(ctx context.Context, symbol string, fields []string, freq model.Frequency) (*model.FinancialHistory, error) {
	return c.inner.FetchFinancials(ctx, symbol, fields, freq)
}

func (c *CachedFetcher) FetchInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	c.mu.RLock()
	entry, ok := c.infos[symbol]
	c.mu.RUnlock()
	if ok && time.Since(entry.at) < c.ttl {
		return entry.info, nil
	}

	info, err := c.inner.FetchInfo(ctx, symbol)
	if err != nil {
		return info, err
	}
	c.mu.Lock()
	c.infos[symbol] = cachedInfo{info: info, at: time.Now()}
	c.mu.Unlock()
	return info, nil
}
