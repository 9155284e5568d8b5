package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"GoldSentinel/internal/model"
)

// DefaultTwelveDataURL is the public Twelve Data REST endpoint.
const DefaultTwelveDataURL = "https://api.twelvedata.com"

// TwelveDataFetcher implements Fetcher using the Twelve Data REST API.
type TwelveDataFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewTwelveDataFetcher creates a new fetcher with optional proxy support.
func NewTwelveDataFetcher(baseURL, apiKey, proxyURL string) *TwelveDataFetcher {
	if baseURL == "" {
		baseURL = DefaultTwelveDataURL
	}
	return &TwelveDataFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *TwelveDataFetcher) Name() string { return "twelvedata" }

// tdStatus is embedded in every Twelve Data response; status "error" carries a message.
type tdStatus struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s tdStatus) err() error {
	if s.Status == "error" {
		return fmt.Errorf("twelvedata api error %d: %s", s.Code, s.Message)
	}
	return nil
}

type tdPrice struct {
	tdStatus
	Price interface{} `json:"price"`
}

type tdSeries struct {
	tdStatus
	Values []map[string]interface{} `json:"values"`
}

// tdTimeLayouts covers intraday and daily datetimes.
var tdTimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

func (f *TwelveDataFetcher) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", f.APIKey)

	var result tdPrice
	if err := f.get(ctx, "/price", q, &result); err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	if err := result.err(); err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	price, err := toFloat(result.Price)
	if err != nil {
		return 0, fmt.Errorf("fetch price: %w", err)
	}
	return price, nil
}

func (f *TwelveDataFetcher) FetchCandles(ctx context.Context, symbol, interval string, count int) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(count))
	q.Set("apikey", f.APIKey)

	var result tdSeries
	if err := f.get(ctx, "/time_series", q, &result); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	if err := result.err(); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}

	bars, err := parseSeries(result.Values)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", interval, err)
	}
	return bars, nil
}

// parseSeries converts provider rows into oldest-first candles. Any bad row fails the batch.
func parseSeries(rows []map[string]interface{}) ([]model.Candle, error) {
	bars := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		ts, err := parseDatetime(row["datetime"])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		bar := model.Candle{Time: ts}
		fields := []struct {
			key string
			dst *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
		}
		for _, fd := range fields {
			v, err := toFloat(row[fd.key])
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", i, fd.key, err)
			}
			*fd.dst = v
		}
		// FX and metals carry no volume.
		if raw, ok := row["volume"]; ok {
			if v, err := toFloat(raw); err == nil {
				bar.Volume = v
			}
		}
		bars = append(bars, bar)
	}

	// Twelve Data returns newest first; normalize regardless.
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseDatetime(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: missing datetime", ErrMalformed)
	}
	for _, layout := range tdTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad datetime %q", ErrMalformed, s)
}

func (f *TwelveDataFetcher) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	endpoint := f.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}
	return nil
}
