package strategy

import (
	"math"

	"GoldSentinel/internal/model"
)

// PatternRule maps a two-candle predicate to a signal.
type PatternRule struct {
	Name   string
	Signal model.Signal
	Match  func(prev, last model.Candle) bool
}

// PatternRules is evaluated in order; the first matching rule wins.
// A zero-bodied candle satisfies a pin-bar rule whenever its wick exists.
var PatternRules = []PatternRule{
	{"bullish_pin_bar", model.SignalBuy, func(_, last model.Candle) bool {
		return last.Close > last.Open && last.High-last.Close > 2*body(last)
	}},
	{"bearish_pin_bar", model.SignalSell, func(_, last model.Candle) bool {
		return last.Close < last.Open && last.Close-last.Low > 2*body(last)
	}},
	{"bullish_engulfing", model.SignalBuy, func(prev, last model.Candle) bool {
		return last.Close > prev.Open && last.Open < prev.Close
	}},
	{"bearish_engulfing", model.SignalSell, func(prev, last model.Candle) bool {
		return last.Close < prev.Open && last.Open > prev.Close
	}},
}

// PatternWindow is the number of recent candles the detector inspects.
const PatternWindow = 3

func body(c model.Candle) float64 {
	return math.Abs(c.Close - c.Open)
}

// DetectPattern classifies the newest candles of an oldest-first series.
// It returns SignalNone and an empty rule name when fewer than PatternWindow
// candles are available or no rule matches.
func DetectPattern(candles []model.Candle) (model.Signal, string) {
	if len(candles) < PatternWindow {
		return model.SignalNone, ""
	}
	recent := candles[len(candles)-PatternWindow:]
	prev, last := recent[PatternWindow-2], recent[PatternWindow-1]

	for _, r := range PatternRules {
		if r.Match(prev, last) {
			return r.Signal, r.Name
		}
	}
	return model.SignalNone, ""
}
