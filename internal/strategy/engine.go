package strategy

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"GoldSentinel/internal/alertstate"
	"GoldSentinel/internal/model"
)

// MarketData supplies the current price and oldest-first candles for the instrument.
type MarketData interface {
	Price(ctx context.Context) (float64, error)
	Candles(ctx context.Context, interval string, count int) ([]model.Candle, error)
}

// AlertSink delivers a built alert. Delivery is fire-and-forget from the engine's view.
type AlertSink interface {
	SendAlert(ctx context.Context, alert *model.AlertMessage) error
}

// SessionLabeler names the trading session at a moment.
type SessionLabeler interface {
	Label(t time.Time) string
}

// Config holds the fixed rule parameters.
type Config struct {
	Symbol    string
	Levels    []float64
	Tolerance float64
	LotSize   float64
	Risk      RiskParams
}

// Engine runs one evaluation cycle: level proximity, pattern confirmation,
// trend alignment, repeat suppression, risk computation and dispatch.
type Engine struct {
	cfg      Config
	market   MarketData
	sink     AlertSink
	dedup    *alertstate.Deduplicator
	sessions SessionLabeler
	now      func() time.Time
}

// NewEngine creates an Engine. The Deduplicator is shared with every caller
// that may run cycles concurrently.
func NewEngine(cfg Config, market MarketData, sink AlertSink, dedup *alertstate.Deduplicator, sessions SessionLabeler) *Engine {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultLevelTolerance
	}
	return &Engine{
		cfg:      cfg,
		market:   market,
		sink:     sink,
		dedup:    dedup,
		sessions: sessions,
		now:      time.Now,
	}
}

// WithClock replaces the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run executes one cycle. It never returns nil; the Stage field tells where the cycle ended.
func (e *Engine) Run(ctx context.Context) *model.CycleResult {
	res := &model.CycleResult{ID: uuid.NewString(), StartedAt: e.now()}
	e.evaluate(ctx, res)
	res.Duration = e.now().Sub(res.StartedAt)
	return res
}

func (e *Engine) evaluate(ctx context.Context, res *model.CycleResult) {
	// 1. price
	price, err := e.market.Price(ctx)
	if err != nil {
		log.Printf("[WARN] cycle %s: %v", res.ID, err)
		res.Stage, res.Err = model.StagePriceUnavailable, err
		return
	}
	res.Price = price

	// 2. levels
	near := NearLevels(price, e.cfg.Levels, e.cfg.Tolerance)
	if len(near) == 0 {
		res.Stage = model.StageNoLevel
		return
	}
	res.Levels = near

	// 3. price action
	recent, err := e.market.Candles(ctx, model.Interval15m, PatternWindow)
	if err != nil {
		log.Printf("[WARN] cycle %s: %v", res.ID, err)
		res.Err = err
	}
	signal, pattern := DetectPattern(recent)
	if signal == model.SignalNone {
		res.Stage = model.StageNoPattern
		return
	}
	res.Signal, res.Pattern = signal, pattern

	// 4. trend alignment
	short, err := e.market.Candles(ctx, model.Interval15m, ShortTrendBars)
	if err != nil {
		log.Printf("[WARN] cycle %s: %v", res.ID, err)
		res.Err = err
	}
	long, err := e.market.Candles(ctx, model.Interval1h, LongTrendBars)
	if err != nil {
		log.Printf("[WARN] cycle %s: %v", res.ID, err)
		res.Err = err
	}
	res.ShortBias, res.LongBias = EvaluateTrend(short, long)
	if !TrendAligned(signal, res.ShortBias, res.LongBias) {
		res.Stage = model.StageTrendMismatch
		return
	}

	// 5-7. suppression, risk, dispatch, record
	level := near[0]
	var sendErr error
	passed := e.dedup.Gate(level, signal, func() {
		alert := e.buildAlert(signal, pattern, price, near)
		res.Alert = alert
		sendErr = e.sink.SendAlert(ctx, alert)
	})
	switch {
	case !passed:
		log.Printf("[INFO] cycle %s: %s at %g already alerted, suppressed", res.ID, signal, level)
		res.Stage = model.StageSuppressed
	case sendErr != nil:
		log.Printf("[ERROR] cycle %s: deliver alert: %v", res.ID, sendErr)
		res.Stage, res.Err = model.StageDeliveryFailed, sendErr
	default:
		log.Printf("[INFO] cycle %s: %s alert dispatched at %.2f (level %g)", res.ID, signal, price, level)
		res.Stage = model.StageDispatched
	}
}

func (e *Engine) buildAlert(signal model.Signal, pattern string, price float64, levels []float64) *model.AlertMessage {
	sl, tp := StopsFor(signal, price, e.cfg.Risk)
	now := e.now()
	label := ""
	if e.sessions != nil {
		label = e.sessions.Label(now)
	}
	matched := make([]float64, len(levels))
	copy(matched, levels)
	return &model.AlertMessage{
		Symbol:         e.cfg.Symbol,
		Signal:         signal,
		Entry:          price,
		StopLoss:       sl,
		TakeProfit:     tp,
		StopLossPips:   e.cfg.Risk.StopLossPips,
		TakeProfitPips: e.cfg.Risk.TakeProfitPips,
		LotSize:        e.cfg.LotSize,
		Levels:         matched,
		Session:        label,
		Pattern:        pattern,
		CreatedAt:      now,
	}
}

// LastAlert exposes the deduplicator state for status reporting.
func (e *Engine) LastAlert() model.LastAlert {
	return e.dedup.Last()
}

// Config returns the rule parameters the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}
