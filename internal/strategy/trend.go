package strategy

import (
	"GoldSentinel/internal/calculator"
	"GoldSentinel/internal/model"
)

// Trend series sizes: 15-minute bars for the short view, 1-hour bars for the long view.
const (
	ShortTrendBars = 20
	LongTrendBars  = 50
)

// seriesBias is UP when the latest close is strictly above the series mean.
func seriesBias(bars []model.Candle) model.TrendBias {
	mean, err := calculator.MeanClose(bars)
	if err != nil {
		return model.TrendNeutral
	}
	last, err := calculator.LastClose(bars)
	if err != nil {
		return model.TrendNeutral
	}
	if last > mean {
		return model.TrendUp
	}
	return model.TrendDown
}

// EvaluateTrend returns the short and long biases. If either series is
// empty both are reported as TrendNeutral.
func EvaluateTrend(short, long []model.Candle) (model.TrendBias, model.TrendBias) {
	if len(short) == 0 || len(long) == 0 {
		return model.TrendNeutral, model.TrendNeutral
	}
	return seriesBias(short), seriesBias(long)
}

// TrendAligned reports whether both biases agree with the signal direction.
// Neutral biases never align.
func TrendAligned(signal model.Signal, short, long model.TrendBias) bool {
	switch signal {
	case model.SignalBuy:
		return short == model.TrendUp && long == model.TrendUp
	case model.SignalSell:
		return short == model.TrendDown && long == model.TrendDown
	default:
		return false
	}
}
