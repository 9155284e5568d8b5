package calculator

import (
	"errors"

	"GoldSentinel/internal/model"
)

// ErrNoData is returned when a calculation receives an empty series.
var ErrNoData = errors.New("no data")

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MeanClose returns the arithmetic mean of every close in the series.
func MeanClose(bars []model.Candle) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	return CalculateSMA(model.Closes(bars), len(bars))
}

// LastClose returns the close of the newest bar.
func LastClose(bars []model.Candle) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	return bars[len(bars)-1].Close, nil
}
