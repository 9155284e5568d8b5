package model

import "time"

// Signal is the trade direction produced by pattern detection.
type Signal int

const (
	SignalNone Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// TrendBias is the directional bias of a candle series.
// TrendNeutral means the trend could not be computed.
type TrendBias int

const (
	TrendNeutral TrendBias = iota
	TrendUp
	TrendDown
)

func (b TrendBias) String() string {
	switch b {
	case TrendUp:
		return "UP"
	case TrendDown:
		return "DOWN"
	default:
		return "NEUTRAL"
	}
}

// LastAlert remembers the most recently dispatched (level, direction) pair.
type LastAlert struct {
	Level     float64
	Direction Signal
	Set       bool
	At        time.Time
}

// AlertMessage is the content of one dispatched alert.
type AlertMessage struct {
	Symbol         string
	Signal         Signal
	Entry          float64
	StopLoss       float64
	TakeProfit     float64
	StopLossPips   float64
	TakeProfitPips float64
	LotSize        float64
	Levels         []float64
	Session        string
	Pattern        string
	CreatedAt      time.Time
}

// Stage names the point at which an evaluation cycle ended.
type Stage string

const (
	StagePriceUnavailable Stage = "price_unavailable"
	StageNoLevel          Stage = "no_level"
	StageNoPattern        Stage = "no_pattern"
	StageTrendMismatch    Stage = "trend_mismatch"
	StageSuppressed       Stage = "suppressed"
	StageDispatched       Stage = "dispatched"
	StageDeliveryFailed   Stage = "delivery_failed"
)

// CycleResult describes the outcome of one engine run.
type CycleResult struct {
	ID        string
	Stage     Stage
	Price     float64
	Levels    []float64
	Signal    Signal
	Pattern   string
	ShortBias TrendBias
	LongBias  TrendBias
	Alert     *AlertMessage
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Dispatched reports whether the cycle produced an alert, delivered or not.
func (r *CycleResult) Dispatched() bool {
	return r.Stage == StageDispatched || r.Stage == StageDeliveryFailed
}
