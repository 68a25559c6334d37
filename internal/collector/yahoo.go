package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// YahooFetcher implements Fetcher against the Yahoo Finance public API.
// Chart data needs no authentication; quoteSummary requires a session
// cookie plus a crumb token, acquired lazily on first use.
type YahooFetcher struct {
	Client    *http.Client
	SymbolMap map[string]string // maps internal aliases to Yahoo tickers
	limiter   *rate.Limiter

	mu    sync.Mutex
	crumb string
}

// NewYahooFetcher creates a Yahoo Finance fetcher. requestsPerSecond caps
// the outbound request rate; 0 selects a conservative default of 2/s.
func NewYahooFetcher(proxyURL string, requestsPerSecond float64) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	jar, _ := cookiejar.New(nil)
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
			Jar:       jar,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// ensureCrumb performs the cookie/crumb handshake: a request to fc.yahoo.com
// seeds the session cookie, then the getcrumb endpoint returns the token the
// quoteSummary API expects.
func (f *YahooFetcher) ensureCrumb(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.crumb != "" {
		return f.crumb, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://fc.yahoo.com", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	if resp, err := f.Client.Do(req); err == nil {
		// The response itself is a 404; only the Set-Cookie matters.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	body, err := f.get(ctx, "https://query1.finance.yahoo.com/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("get crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.Contains(crumb, "<") {
		return "", fmt.Errorf("get crumb: unexpected response %q", crumb)
	}
	f.crumb = crumb
	return crumb, nil
}

// yahooChart is the response structure from the Yahoo chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) FetchPriceHistory(ctx context.Context, symbol, period string, interval model.Interval) (*model.PriceHistory, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s",
		url.PathEscape(f.yahooSymbol(symbol)), interval, period)

	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bar (holiday etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(quote.Volume[i]),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return &model.PriceHistory{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// yahooTimeseries is the response structure from the fundamentals
// timeseries API. Each result carries one typed series; the typed array
// lives under a key named after the series type, so it is decoded from the
// raw message per result.
type yahooTimeseries struct {
	Timeseries struct {
		Result []json.RawMessage `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

type yahooStatementPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue *struct {
		Raw float64 `json:"raw"`
	} `json:"reportedValue"`
}

// timeseriesType maps a statement field name to the API's series type for
// the given frequency, e.g. "Basic EPS" + quarterly -> "quarterlyBasicEPS".
func timeseriesType(field string, freq model.Frequency) string {
	return string(freq) + strings.ReplaceAll(field, " ", "")
}

func (f *YahooFetcher) FetchFinancials(ctx context.Context, symbol string, fields []string, freq model.Frequency) (*model.FinancialHistory, error) {
	types := make([]string, len(fields))
	fieldByType := make(map[string]string, len(fields))
	for i, field := range fields {
		t := timeseriesType(field, freq)
		types[i] = t
		fieldByType[t] = field
	}

	// Five years back covers the growth lookbacks at both frequencies.
	now := time.Now()
	u := fmt.Sprintf("https://query1.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries/%s?type=%s&period1=%d&period2=%d&merge=false",
		url.PathEscape(f.yahooSymbol(symbol)),
		strings.Join(types, ","),
		now.AddDate(-5, 0, 0).Unix(), now.Unix())

	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var ts yahooTimeseries
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, fmt.Errorf("yahoo decode timeseries: %w", err)
	}
	if ts.Timeseries.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", ts.Timeseries.Error.Description)
	}

	// field -> asOfDate -> value
	byField := make(map[string]map[string]float64)
	dateSet := make(map[string]struct{})
	for _, raw := range ts.Timeseries.Result {
		var meta struct {
			Meta struct {
				Type []string `json:"type"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil || len(meta.Meta.Type) == 0 {
			continue
		}
		seriesType := meta.Meta.Type[0]
		field, ok := fieldByType[seriesType]
		if !ok {
			continue
		}
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		var points []*yahooStatementPoint
		if err := json.Unmarshal(payload[seriesType], &points); err != nil {
			continue
		}
		values := make(map[string]float64)
		for _, p := range points {
			if p == nil || p.ReportedValue == nil || p.AsOfDate == "" {
				continue
			}
			values[p.AsOfDate] = p.ReportedValue.Raw
			dateSet[p.AsOfDate] = struct{}{}
		}
		byField[field] = values
	}
	if len(dateSet) == 0 {
		return nil, fmt.Errorf("yahoo: no financial data for %s", symbol)
	}

	dateKeys := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dateKeys = append(dateKeys, d)
	}
	sort.Strings(dateKeys)

	history := &model.FinancialHistory{
		Symbol:    symbol,
		Frequency: freq,
		Dates:     make([]time.Time, len(dateKeys)),
		Metrics:   make(map[string][]float64),
	}
	for i, d := range dateKeys {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("yahoo: bad statement date %q: %w", d, err)
		}
		history.Dates[i] = t
	}
	for field, values := range byField {
		column := make([]float64, len(dateKeys))
		for i, d := range dateKeys {
			if v, ok := values[d]; ok {
				column[i] = v
			} else {
				column[i] = math.NaN()
			}
		}
		history.Metrics[field] = column
	}
	return history, nil
}

// yahooQuoteSummary is the response structure from the quoteSummary API.
type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			QuoteType *struct {
				QuoteType string `json:"quoteType"`
			} `json:"quoteType"`
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				PreviousClose yahooRaw `json:"previousClose"`
				TrailingPE    yahooRaw `json:"trailingPE"`
				MarketCap     yahooRaw `json:"marketCap"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				TrailingEps       yahooRaw `json:"trailingEps"`
				SharesOutstanding yahooRaw `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				RevenuePerShare yahooRaw `json:"revenuePerShare"`
			} `json:"financialData"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// yahooRaw is a numeric field wrapped in Yahoo's {raw, fmt} envelope.
// Absent fields decode to NaN.
type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

func (r yahooRaw) value() float64 {
	if r.Raw == nil {
		return math.NaN()
	}
	return *r.Raw
}

func (f *YahooFetcher) FetchInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	info := model.NewTickerInfo(symbol)
	crumb, err := f.ensureCrumb(ctx)
	if err != nil {
		return info, err
	}

	u := fmt.Sprintf("https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=quoteType,assetProfile,summaryDetail,defaultKeyStatistics,financialData&crumb=%s",
		url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(crumb))

	body, err := f.get(ctx, u)
	if err != nil {
		return info, err
	}
	var qs yahooQuoteSummary
	if err := json.Unmarshal(body, &qs); err != nil {
		return info, fmt.Errorf("yahoo decode quoteSummary: %w", err)
	}
	if qs.QuoteSummary.Error != nil {
		return info, fmt.Errorf("yahoo api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return info, fmt.Errorf("yahoo: no info for %s", symbol)
	}

	r := qs.QuoteSummary.Result[0]
	if r.QuoteType != nil {
		info.QuoteType = r.QuoteType.QuoteType
	}
	if r.AssetProfile != nil {
		info.Sector = r.AssetProfile.Sector
		info.Industry = r.AssetProfile.Industry
	}
	if r.SummaryDetail != nil {
		info.PreviousClose = r.SummaryDetail.PreviousClose.value()
		info.TrailingPE = r.SummaryDetail.TrailingPE.value()
		info.MarketCap = r.SummaryDetail.MarketCap.value()
	}
	if r.DefaultKeyStatistics != nil {
		info.TrailingEPS = r.DefaultKeyStatistics.TrailingEps.value()
		info.SharesOutstanding = r.DefaultKeyStatistics.SharesOutstanding.value()
	}
	if r.FinancialData != nil {
		info.RevenuePerShare = r.FinancialData.RevenuePerShare.value()
	}
	return info, nil
}
