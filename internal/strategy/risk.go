package strategy

import (
	"github.com/shopspring/decimal"

	"GoldSentinel/internal/model"
)

// RiskParams holds the fixed pip distances and the pip-to-price multiplier.
type RiskParams struct {
	StopLossPips   float64
	TakeProfitPips float64
	PipSize        float64
}

// StopsFor computes stop-loss and take-profit for an entry. BUY places the
// stop below entry and the target above; SELL is the inverse.
func StopsFor(signal model.Signal, entry float64, p RiskParams) (stopLoss, takeProfit float64) {
	e := decimal.NewFromFloat(entry)
	pip := decimal.NewFromFloat(p.PipSize)
	slDist := decimal.NewFromFloat(p.StopLossPips).Mul(pip)
	tpDist := decimal.NewFromFloat(p.TakeProfitPips).Mul(pip)

	if signal == model.SignalSell {
		return e.Add(slDist).InexactFloat64(), e.Sub(tpDist).InexactFloat64()
	}
	return e.Sub(slDist).InexactFloat64(), e.Add(tpDist).InexactFloat64()
}
