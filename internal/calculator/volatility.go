package calculator

import (
	"math"

	"WolfDesk/internal/model"
)

// ATRPeriod is the lookback used by the engine.
const ATRPeriod = 14

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|) per bar.
// The first bar has no previous close, so its true range is high-low.
func TrueRange(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
		}
		out[i] = tr
	}
	return out
}

// ATR is the trailing simple average of the true range.
func ATR(bars []model.OHLCV, period int) []float64 {
	return SMA(TrueRange(bars), period)
}
