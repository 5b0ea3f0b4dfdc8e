package calculator

import (
	"math"
	"time"

	"WolfDesk/internal/model"
)

var baseDay = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

// barsFromCloses builds valid daily bars whose body spans the move from the
// previous close.
func barsFromCloses(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = model.OHLCV{
			Time:   baseDay.AddDate(0, 0, i),
			Open:   open,
			High:   math.Max(open, c) + 0.2,
			Low:    math.Min(open, c) - 0.2,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func waveCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 30 + 4*math.Sin(float64(i)/3) + 0.05*float64(i)
	}
	return closes
}

func linearCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return closes
}
