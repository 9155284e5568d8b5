package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"GoldSentinel/internal/model"
)

// ErrMalformed marks a response that could not be coerced into prices or candles.
// The whole batch is rejected.
var ErrMalformed = errors.New("malformed market data")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchPrice(ctx context.Context, symbol string) (float64, error)
	FetchCandles(ctx context.Context, symbol, interval string, count int) ([]model.Candle, error)
	Name() string
}

// newHTTPClient builds a client with a request timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// toFloat coerces a JSON value (number or numeric string) into a finite float.
func toFloat(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unexpected value %v", ErrMalformed, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite value", ErrMalformed)
	}
	return f, nil
}
