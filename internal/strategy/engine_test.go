package strategy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"GoldSentinel/internal/alertstate"
	"GoldSentinel/internal/collector"
	"GoldSentinel/internal/model"
)

type recordingSink struct {
	mu     sync.Mutex
	alerts []*model.AlertMessage
	err    error
}

func (s *recordingSink) SendAlert(_ context.Context, a *model.AlertMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

type fixedSession string

func (f fixedSession) Label(time.Time) string { return string(f) }

var testLevels = []float64{1920, 1945, 1980, 2000}

func testConfig() Config {
	return Config{
		Symbol:    "XAU/USD",
		Levels:    testLevels,
		Tolerance: 1.0,
		LotSize:   0.01,
		Risk:      RiskParams{StopLossPips: 25, TakeProfitPips: 85, PipSize: 0.1},
	}
}

// buySetup: bullish pin bar on 15m, both timeframes rising.
func buySetup(price float64) *collector.MockFetcher {
	m15 := append(collector.GenerateMockBars(1940, 0.2, 19), model.Candle{Open: 1945.0, High: 1946.5, Low: 1944.9, Close: 1945.2})
	return &collector.MockFetcher{
		Price: price,
		Candles: map[string][]model.Candle{
			model.Interval15m: m15,
			model.Interval1h:  collector.GenerateMockBars(1900, 1, 50),
		},
	}
}

// sellSetup: bearish pin bar on 15m, both timeframes falling.
func sellSetup(price float64) *collector.MockFetcher {
	m15 := append(collector.GenerateMockBars(1950, -0.2, 19), model.Candle{Open: 1945.8, High: 1945.9, Low: 1944.0, Close: 1945.6})
	return &collector.MockFetcher{
		Price: price,
		Candles: map[string][]model.Candle{
			model.Interval15m: m15,
			model.Interval1h:  collector.GenerateMockBars(2000, -1, 50),
		},
	}
}

func newTestEngine(f *collector.MockFetcher, sink *recordingSink, dedup *alertstate.Deduplicator) *Engine {
	return NewEngine(testConfig(), collector.NewCollector(f, "XAU/USD"), sink, dedup, fixedSession("London"))
}

func TestEngine_BuyDispatchedThenSuppressed(t *testing.T) {
	sink := &recordingSink{}
	dedup := alertstate.NewDeduplicator()
	eng := newTestEngine(buySetup(1945.4), sink, dedup)

	res := eng.Run(context.Background())
	if res.Stage != model.StageDispatched {
		t.Fatalf("expected dispatched, got %s (err=%v)", res.Stage, res.Err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected 1 alert, got %d", sink.count())
	}
	a := sink.alerts[0]
	if a.Signal != model.SignalBuy || a.Entry != 1945.4 {
		t.Errorf("unexpected alert: %+v", a)
	}
	if a.StopLoss != 1942.9 || a.TakeProfit != 1953.9 {
		t.Errorf("expected SL 1942.9 / TP 1953.9, got %v / %v", a.StopLoss, a.TakeProfit)
	}
	if len(a.Levels) != 1 || a.Levels[0] != 1945 {
		t.Errorf("expected matched level [1945], got %v", a.Levels)
	}
	if a.Session != "London" || a.LotSize != 0.01 || a.Pattern != "bullish_pin_bar" {
		t.Errorf("unexpected alert metadata: %+v", a)
	}
	if res.ShortBias != model.TrendUp || res.LongBias != model.TrendUp {
		t.Errorf("expected UP/UP, got %s/%s", res.ShortBias, res.LongBias)
	}
	if res.ID == "" {
		t.Error("expected a cycle ID")
	}

	again := eng.Run(context.Background())
	if again.Stage != model.StageSuppressed {
		t.Errorf("expected suppressed on repeat, got %s", again.Stage)
	}
	if sink.count() != 1 {
		t.Errorf("expected no additional dispatch, got %d alerts", sink.count())
	}
}

func TestEngine_IdempotentWithMatchingState(t *testing.T) {
	sink := &recordingSink{}
	dedup := alertstate.NewDeduplicator()
	dedup.Record(1945, model.SignalBuy)
	eng := newTestEngine(buySetup(1945.4), sink, dedup)

	for i := 0; i < 2; i++ {
		if res := eng.Run(context.Background()); res.Stage != model.StageSuppressed {
			t.Errorf("run %d: expected suppressed, got %s", i, res.Stage)
		}
	}
	if sink.count() != 0 {
		t.Errorf("expected zero dispatches, got %d", sink.count())
	}
}

func TestEngine_SellComputesInverseStops(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(sellSetup(1945.4), sink, alertstate.NewDeduplicator())

	res := eng.Run(context.Background())
	if res.Stage != model.StageDispatched {
		t.Fatalf("expected dispatched, got %s", res.Stage)
	}
	a := res.Alert
	if a.Signal != model.SignalSell || a.StopLoss != 1947.9 || a.TakeProfit != 1936.9 {
		t.Errorf("unexpected SELL alert: %+v", a)
	}
}

func TestEngine_DirectionFlipNotSuppressed(t *testing.T) {
	sink := &recordingSink{}
	dedup := alertstate.NewDeduplicator()

	if res := newTestEngine(buySetup(1945.4), sink, dedup).Run(context.Background()); res.Stage != model.StageDispatched {
		t.Fatalf("buy: expected dispatched, got %s", res.Stage)
	}
	if res := newTestEngine(sellSetup(1945.4), sink, dedup).Run(context.Background()); res.Stage != model.StageDispatched {
		t.Fatalf("sell: expected dispatched, got %s", res.Stage)
	}
	if sink.count() != 2 {
		t.Errorf("expected 2 alerts, got %d", sink.count())
	}
}

func TestEngine_ShortCircuits(t *testing.T) {
	flat := collector.GenerateMockBars(1945, 0, 20)

	tests := []struct {
		name    string
		fetcher *collector.MockFetcher
		want    model.Stage
		wantErr bool
	}{
		{"price unavailable", &collector.MockFetcher{PriceErr: errors.New("timeout")}, model.StagePriceUnavailable, true},
		{"no level nearby", buySetup(1960), model.StageNoLevel, false},
		{"no pattern", &collector.MockFetcher{
			Price:   1945.4,
			Candles: map[string][]model.Candle{model.Interval15m: flat, model.Interval1h: flat},
		}, model.StageNoPattern, false},
		{"no 15m candles", &collector.MockFetcher{Price: 1945.4}, model.StageNoPattern, true},
		{"trend against signal", func() *collector.MockFetcher {
			f := buySetup(1945.4)
			f.Candles[model.Interval1h] = collector.GenerateMockBars(2000, -1, 50)
			return f
		}(), model.StageTrendMismatch, false},
		{"1h unavailable is neutral", func() *collector.MockFetcher {
			f := buySetup(1945.4)
			delete(f.Candles, model.Interval1h)
			return f
		}(), model.StageTrendMismatch, true},
	}
	for _, tt := range tests {
		sink := &recordingSink{}
		dedup := alertstate.NewDeduplicator()
		res := newTestEngine(tt.fetcher, sink, dedup).Run(context.Background())
		if res.Stage != tt.want {
			t.Errorf("%s: stage = %s, want %s", tt.name, res.Stage, tt.want)
		}
		if (res.Err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, res.Err, tt.wantErr)
		}
		if sink.count() != 0 {
			t.Errorf("%s: expected no dispatch", tt.name)
		}
		if dedup.Last().Set {
			t.Errorf("%s: dedup state must be untouched", tt.name)
		}
	}
}

func TestEngine_PriceFailureSkipsCandleFetch(t *testing.T) {
	f := &collector.MockFetcher{PriceErr: errors.New("down")}
	newTestEngine(f, &recordingSink{}, alertstate.NewDeduplicator()).Run(context.Background())
	if f.Calls() != 1 {
		t.Errorf("expected a single fetch, got %d", f.Calls())
	}
}

func TestEngine_DeliveryFailureStillRecords(t *testing.T) {
	sink := &recordingSink{err: errors.New("telegram down")}
	dedup := alertstate.NewDeduplicator()
	eng := newTestEngine(buySetup(1945.4), sink, dedup)

	res := eng.Run(context.Background())
	if res.Stage != model.StageDeliveryFailed || res.Err == nil {
		t.Fatalf("expected delivery_failed with error, got %s (%v)", res.Stage, res.Err)
	}
	if !res.Dispatched() {
		t.Error("a failed delivery still counts as dispatched")
	}
	if last := dedup.Last(); !last.Set || last.Level != 1945 || last.Direction != model.SignalBuy {
		t.Errorf("expected dedup state recorded, got %+v", last)
	}
	if res := eng.Run(context.Background()); res.Stage != model.StageSuppressed {
		t.Errorf("expected suppressed after failed delivery, got %s", res.Stage)
	}
}

func TestEngine_FirstConfiguredLevelIsDedupKey(t *testing.T) {
	cfg := testConfig()
	cfg.Levels = []float64{1946, 1945}
	dedup := alertstate.NewDeduplicator()
	eng := NewEngine(cfg, collector.NewCollector(buySetup(1945.4), "XAU/USD"), &recordingSink{}, dedup, fixedSession("London"))

	res := eng.Run(context.Background())
	if res.Stage != model.StageDispatched {
		t.Fatalf("expected dispatched, got %s", res.Stage)
	}
	if last := dedup.Last(); last.Level != 1946 {
		t.Errorf("expected dedup key 1946 (first configured), got %g", last.Level)
	}
	if len(res.Alert.Levels) != 2 {
		t.Errorf("expected both matched levels in alert, got %v", res.Alert.Levels)
	}
}

func TestEngine_ConcurrentRunsDispatchOnce(t *testing.T) {
	sink := &recordingSink{}
	eng := newTestEngine(buySetup(1945.4), sink, alertstate.NewDeduplicator())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Run(context.Background())
		}()
	}
	wg.Wait()
	if sink.count() != 1 {
		t.Errorf("expected exactly one dispatch, got %d", sink.count())
	}
}

func TestNewEngine_DefaultTolerance(t *testing.T) {
	cfg := testConfig()
	cfg.Tolerance = 0
	eng := NewEngine(cfg, nil, nil, alertstate.NewDeduplicator(), nil)
	if eng.Config().Tolerance != DefaultLevelTolerance {
		t.Errorf("expected default tolerance, got %g", eng.Config().Tolerance)
	}
}
