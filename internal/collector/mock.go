package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Unset maps fall back to synthetic bars around Price; symbols listed in
// Fail always error.
type MockFetcher struct {
	Price      float64
	BarCount   int
	Histories  map[string][]model.OHLCV
	Statements map[string]*model.FinancialHistory
	InfoMap    map[string]model.TickerInfo
	Fail       map[string]bool
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPriceHistory(_ context.Context, symbol, _ string, interval model.Interval) (*model.PriceHistory, error) {
	if m.Fail[symbol] {
		return nil, fmt.Errorf("mock: %s unavailable", symbol)
	}
	bars, ok := m.Histories[symbol]
	if !ok {
		count := m.BarCount
		if count == 0 {
			count = 300
		}
		bars = generateMockBars(m.Price, count)
	}
	return &model.PriceHistory{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

func (m *MockFetcher) FetchFinancials(_ context.Context, symbol string, _ []string, freq model.Frequency) (*model.FinancialHistory, error) {
	if m.Fail[symbol] {
		return nil, fmt.Errorf("mock: %s unavailable", symbol)
	}
	if h, ok := m.Statements[symbol]; ok && h.Frequency == freq {
		return h, nil
	}
	return nil, fmt.Errorf("mock: no %s financials for %s", freq, symbol)
}

func (m *MockFetcher) FetchInfo(_ context.Context, symbol string) (model.TickerInfo, error) {
	if m.Fail[symbol] {
		return model.TickerInfo{}, fmt.Errorf("mock: %s unavailable", symbol)
	}
	if info, ok := m.InfoMap[symbol]; ok {
		return info, nil
	}
	return model.NewTickerInfo(symbol), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	// day-aligned timestamps so bars from separate calls line up
	today := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   today.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
