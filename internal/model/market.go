package model

import "time"

// Candle represents a single OHLCV bar. Slices of candles are kept oldest-first.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Closes extracts the close prices of a candle series.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Candle intervals requested from the quote provider.
const (
	Interval15m = "15min"
	Interval1h  = "1h"
)
