package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// RESTFetcher implements Fetcher against an internal market-data REST API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

func (f *RESTFetcher) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fetch: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// restBar is the expected JSON shape of one bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTFetcher) FetchPriceHistory(ctx context.Context, symbol, period string, interval model.Interval) (*model.PriceHistory, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars?symbol=%s&interval=%s&range=%s",
		f.BaseURL, url.QueryEscape(symbol), interval, url.QueryEscape(period))

	var restBars []restBar
	if err := f.getJSON(ctx, endpoint, &restBars); err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}
	bars := make([]model.OHLCV, len(restBars))
	for i, rb := range restBars {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return &model.PriceHistory{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// restStatement is the expected JSON shape of a financials response:
// period-end dates plus one column per field, parallel to the dates.
type restStatement struct {
	Dates   []string              `json:"dates"`
	Metrics map[string][]*float64 `json:"metrics"`
}

func (f *RESTFetcher) FetchFinancials(ctx context.Context, symbol string, fields []string, freq model.Frequency) (*model.FinancialHistory, error) {
	endpoint := fmt.Sprintf("%s/api/v1/financials?symbol=%s&freq=%s&fields=%s",
		f.BaseURL, url.QueryEscape(symbol), freq, url.QueryEscape(strings.Join(fields, ",")))

	var stmt restStatement
	if err := f.getJSON(ctx, endpoint, &stmt); err != nil {
		return nil, fmt.Errorf("fetch financials %s: %w", symbol, err)
	}
	if len(stmt.Dates) == 0 {
		return nil, fmt.Errorf("fetch financials %s: no data", symbol)
	}

	history := &model.FinancialHistory{
		Symbol:    symbol,
		Frequency: freq,
		Dates:     make([]time.Time, len(stmt.Dates)),
		Metrics:   make(map[string][]float64),
	}
	for i, d := range stmt.Dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("fetch financials %s: bad date %q: %w", symbol, d, err)
		}
		history.Dates[i] = t
	}
	for _, field := range fields {
		column, ok := stmt.Metrics[field]
		if !ok || len(column) != len(stmt.Dates) {
			continue
		}
		values := make([]float64, len(column))
		for i, v := range column {
			if v == nil {
				values[i] = math.NaN()
			} else {
				values[i] = *v
			}
		}
		history.Metrics[field] = values
	}
	return history, nil
}

// restInfo is the expected JSON shape of an info response; numeric fields
// are pointers so absent values survive as NaN.
type restInfo struct {
	QuoteType         string   `json:"quote_type"`
	Sector            string   `json:"sector"`
	Industry          string   `json:"industry"`
	PreviousClose     *float64 `json:"previous_close"`
	TrailingEPS       *float64 `json:"trailing_eps"`
	RevenuePerShare   *float64 `json:"revenue_per_share"`
	TrailingPE        *float64 `json:"trailing_pe"`
	MarketCap         *float64 `json:"market_cap"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
}

func (f *RESTFetcher) FetchInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/info?symbol=%s", f.BaseURL, url.QueryEscape(symbol))

	var ri restInfo
	if err := f.getJSON(ctx, endpoint, &ri); err != nil {
		return model.NewTickerInfo(symbol), fmt.Errorf("fetch info %s: %w", symbol, err)
	}
	info := model.NewTickerInfo(symbol)
	info.QuoteType = ri.QuoteType
	info.Sector = ri.Sector
	info.Industry = ri.Industry
	info.PreviousClose = deref(ri.PreviousClose)
	info.TrailingEPS = deref(ri.TrailingEPS)
	info.RevenuePerShare = deref(ri.RevenuePerShare)
	info.TrailingPE = deref(ri.TrailingPE)
	info.MarketCap = deref(ri.MarketCap)
	info.SharesOutstanding = deref(ri.SharesOutstanding)
	return info, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
