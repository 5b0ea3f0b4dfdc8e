package portfolio

import (
	"github.com/shopspring/decimal"

	"WolfDesk/internal/model"
)

// Percentage thresholds for position actions.
const (
	StopLossPct   = -7.0
	TakeProfitPct = 15.0
	HoldBandPct   = 3.0
)

var hundred = decimal.NewFromInt(100)

// ProfitPct returns (price - cost) / cost * 100. It is 0 when cost is not positive.
func ProfitPct(price, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(price)
	c := decimal.NewFromFloat(cost)
	return p.Sub(c).Div(c).Mul(hundred).Round(4).InexactFloat64()
}

// Recommend maps the live price and cost basis to an action.
func Recommend(price, cost float64) model.Recommendation {
	if price == 0 || cost == 0 {
		return model.RecWatching
	}
	pct := ProfitPct(price, cost)
	switch {
	case pct <= StopLossPct:
		return model.RecStopLoss
	case pct >= TakeProfitPct:
		return model.RecTakeProfit
	case pct >= -HoldBandPct && pct <= HoldBandPct:
		return model.RecKeepHolding
	default:
		return model.RecMonitorClosely
	}
}

// PositionNote is the warning attached to a held position in an analysis.
func PositionNote(pct float64) string {
	switch {
	case pct < StopLossPct:
		return "stop-loss breached"
	case pct > TakeProfitPct:
		return "consider trailing the stop"
	default:
		return ""
	}
}
