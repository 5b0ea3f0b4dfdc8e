package pattern

import (
	"math"

	"WolfDesk/internal/model"
)

// ClassifyCandle labels the bar shape. Rules are checked in order and the
// first match wins.
func ClassifyCandle(b model.OHLCV) model.CandlePattern {
	totalRange := b.High - b.Low
	if totalRange == 0 {
		return model.CandleDoji
	}

	body := math.Abs(b.Close - b.Open)
	if body <= 0.1*totalRange {
		return model.CandleDojiIndecision
	}

	lowerShadow := math.Min(b.Open, b.Close) - b.Low
	upperShadow := b.High - math.Max(b.Open, b.Close)

	switch {
	case lowerShadow >= 2*body && upperShadow <= 0.5*body:
		return model.CandleHammer
	case upperShadow >= 2*body && lowerShadow <= 0.5*body:
		return model.CandleShootingStar
	case body >= 0.8*totalRange:
		return model.CandleMarubozu
	default:
		return model.CandleOrdinary
	}
}
