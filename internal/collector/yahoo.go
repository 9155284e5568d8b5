package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"GoldSentinel/internal/model"
)

// DefaultYahooURL is the Yahoo Finance chart API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
// It needs no API key and serves as a fallback data source.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"XAU/USD": "GC=F",
			"XAUUSD":  "GC=F",
			"XAG/USD": "SI=F",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooInterval maps provider-neutral intervals to Yahoo's names and a range wide enough to cover them.
var yahooInterval = map[string]struct{ interval, rng string }{
	model.Interval15m: {"15m", "5d"},
	model.Interval1h:  {"60m", "1mo"},
	"1min":            {"1m", "1d"},
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice interface{} `json:"regularMarketPrice"`
			} `json:"meta"`
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

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

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

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", ErrMalformed, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}
	return &chart, nil
}

func (f *YahooFetcher) FetchCandles(ctx context.Context, symbol, interval string, count int) ([]model.Candle, error) {
	yi, ok := yahooInterval[interval]
	if !ok {
		return nil, fmt.Errorf("yahoo: unsupported interval %q", interval)
	}
	chart, err := f.fetchChart(ctx, symbol, yi.interval, yi.rng)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no quote block", ErrMalformed)
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n {
		return nil, fmt.Errorf("%w: yahoo: ragged quote arrays", ErrMalformed)
	}

	bars := make([]model.Candle, 0, n)
	for i, ts := range result.Timestamp {
		bar := model.Candle{Time: time.Unix(ts, 0)}
		for _, fd := range []struct {
			src []interface{}
			dst *float64
		}{
			{quote.Open, &bar.Open},
			{quote.High, &bar.High},
			{quote.Low, &bar.Low},
			{quote.Close, &bar.Close},
		} {
			v, err := toFloat(fd.src[i])
			if err != nil {
				return nil, fmt.Errorf("yahoo bar %d: %w", i, err)
			}
			*fd.dst = v
		}
		if i < len(quote.Volume) {
			if v, err := toFloat(quote.Volume[i]); err == nil {
				bar.Volume = v
			}
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	// Trim to requested count
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}
	return bars, nil
}

func (f *YahooFetcher) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	chart, err := f.fetchChart(ctx, symbol, "1m", "1d")
	if err != nil {
		return 0, err
	}
	price, err := toFloat(chart.Chart.Result[0].Meta.RegularMarketPrice)
	if err != nil {
		return 0, fmt.Errorf("yahoo price: %w", err)
	}
	return price, nil
}
