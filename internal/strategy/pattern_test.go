package strategy

import (
	"testing"

	"GoldSentinel/internal/model"
)

func candle(o, h, l, c float64) model.Candle {
	return model.Candle{Open: o, High: h, Low: l, Close: c}
}

func TestDetectPattern_Rules(t *testing.T) {
	neutral := candle(10, 10.5, 9.5, 10)
	tests := []struct {
		name    string
		prev    model.Candle
		last    model.Candle
		signal  model.Signal
		pattern string
	}{
		{"bullish pin bar", neutral, candle(10, 12, 9.9, 10.2), model.SignalBuy, "bullish_pin_bar"},
		{"bearish pin bar", neutral, candle(10, 10.1, 8, 9.8), model.SignalSell, "bearish_pin_bar"},
		{"bullish engulfing", candle(10, 10.1, 8.9, 9), candle(8.8, 10.6, 8.7, 10.5), model.SignalBuy, "bullish_engulfing"},
		{"bearish engulfing", candle(9, 10.1, 8.9, 10), candle(10.2, 10.3, 8.4, 8.5), model.SignalSell, "bearish_engulfing"},
		{"body mirrors prev", candle(9, 10.2, 8.8, 10), candle(10, 10.1, 8.5, 9), model.SignalNone, ""},
	}
	for _, tt := range tests {
		sig, pattern := DetectPattern([]model.Candle{neutral, tt.prev, tt.last})
		if sig != tt.signal || pattern != tt.pattern {
			t.Errorf("%s: got (%s, %q), want (%s, %q)", tt.name, sig, pattern, tt.signal, tt.pattern)
		}
	}
}

func TestDetectPattern_PinBarBeatsEngulfing(t *testing.T) {
	// The last candle is both a bullish pin bar and would be a bearish
	// engulfing against prev; priority 1 wins regardless of prev.
	last := candle(10, 14, 9.9, 10.5)
	prevs := []model.Candle{
		candle(10.6, 11, 9, 9.9),
		candle(100, 101, 99, 100),
		candle(0, 0, 0, 0),
		candle(5, 1, 9, 3), // high < low
	}
	for _, prev := range prevs {
		sig, pattern := DetectPattern([]model.Candle{prev, prev, last})
		if sig != model.SignalBuy || pattern != "bullish_pin_bar" {
			t.Errorf("prev %+v: got (%s, %q), want bullish pin bar", prev, sig, pattern)
		}
	}
}

func TestDetectPattern_FewerThanThree(t *testing.T) {
	pin := candle(10, 12, 9.9, 10.2)
	for _, series := range [][]model.Candle{nil, {pin}, {pin, pin}} {
		if sig, _ := DetectPattern(series); sig != model.SignalNone {
			t.Errorf("%d candles: expected NONE, got %s", len(series), sig)
		}
	}
}

func TestDetectPattern_UsesNewestThree(t *testing.T) {
	pin := candle(10, 12, 9.9, 10.2)
	flat := candle(10, 10, 10, 10)
	series := []model.Candle{pin, pin, flat, flat, flat}
	if sig, _ := DetectPattern(series); sig != model.SignalNone {
		t.Errorf("expected NONE from the newest candles, got %s", sig)
	}
}

func TestDetectPattern_ZeroBodyDoji(t *testing.T) {
	// A doji has no direction, so neither pin-bar rule fires; engulfing falls through too.
	doji := candle(10, 11, 9, 10)
	if sig, _ := DetectPattern([]model.Candle{doji, doji, doji}); sig != model.SignalNone {
		t.Errorf("expected NONE for doji series, got %s", sig)
	}
}

func TestPatternRules_Order(t *testing.T) {
	want := []string{"bullish_pin_bar", "bearish_pin_bar", "bullish_engulfing", "bearish_engulfing"}
	if len(PatternRules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(PatternRules))
	}
	for i, r := range PatternRules {
		if r.Name != want[i] {
			t.Errorf("rule %d: got %q, want %q", i, r.Name, want[i])
		}
	}
}
