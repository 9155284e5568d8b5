package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GoldSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Candles are keyed by interval; a missing key yields an error.
type MockFetcher struct {
	Price    float64
	PriceErr error
	Candles  map[string][]model.Candle

	mu    sync.Mutex
	calls int
}

// Calls returns how many fetches were made.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFetcher) hit() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrice(_ context.Context, _ string) (float64, error) {
	m.hit()
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

func (m *MockFetcher) FetchCandles(_ context.Context, _ string, interval string, count int) ([]model.Candle, error) {
	m.hit()
	bars, ok := m.Candles[interval]
	if !ok {
		return nil, fmt.Errorf("mock: no %s candles", interval)
	}
	if len(bars) > count {
		bars = bars[len(bars)-count:]
	}
	out := make([]model.Candle, len(bars))
	copy(out, bars)
	return out, nil
}

// GenerateMockBars builds count bars drifting by step per bar, oldest first.
func GenerateMockBars(basePrice, step float64, count int) []model.Candle {
	bars := make([]model.Candle, count)
	start := time.Now().Add(-time.Duration(count) * 15 * time.Minute)
	for i := 0; i < count; i++ {
		p := basePrice + float64(i)*step
		bars[i] = model.Candle{
			Time:  start.Add(time.Duration(i) * 15 * time.Minute),
			Open:  p,
			High:  p + 0.5,
			Low:   p - 0.5,
			Close: p,
		}
	}
	return bars
}

// Collector binds a Fetcher to the configured instrument.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol}
}

// Price returns the current price of the instrument.
func (c *Collector) Price(ctx context.Context) (float64, error) {
	price, err := c.Fetcher.FetchPrice(ctx, c.Symbol)
	if err != nil {
		return 0, fmt.Errorf("%s price %s: %w", c.Fetcher.Name(), c.Symbol, err)
	}
	return price, nil
}

// Candles returns up to count oldest-first candles. On failure the slice is nil.
func (c *Collector) Candles(ctx context.Context, interval string, count int) ([]model.Candle, error) {
	bars, err := c.Fetcher.FetchCandles(ctx, c.Symbol, interval, count)
	if err != nil {
		return nil, fmt.Errorf("%s candles %s %s: %w", c.Fetcher.Name(), c.Symbol, interval, err)
	}
	return bars, nil
}
