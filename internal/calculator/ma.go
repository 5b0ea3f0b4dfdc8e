package calculator

import (
	"math"

	"WolfDesk/internal/model"
)

// SMA returns the trailing simple moving average of values over window bars.
// Bars before the first full window are NaN. A window containing a NaN is NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// EMA returns the adjusted exponential moving average with alpha = 2/(span+1).
// It is seeded from the first value: each output is the alpha-weighted mean of
// every value seen so far, so no bar is undefined. Leading NaNs are skipped and
// stay NaN.
func EMA(values []float64, span int) []float64 {
	out := nanSeries(len(values))
	if span <= 0 {
		return out
	}
	decay := 1 - 2.0/float64(span+1)
	var num, den float64
	started := false
	for i, v := range values {
		if math.IsNaN(v) {
			if started {
				out[i] = num / den
			}
			continue
		}
		if !started {
			num, den = v, 1
			started = true
		} else {
			num = v + decay*num
			den = 1 + decay*den
		}
		out[i] = num / den
	}
	return out
}

// Slope returns values[t] - values[t-lag]; the first lag bars are NaN.
func Slope(values []float64, lag int) []float64 {
	out := nanSeries(len(values))
	if lag <= 0 {
		return out
	}
	for i := lag; i < len(values); i++ {
		out[i] = values[i] - values[i-lag]
	}
	return out
}

// Rising reports whether a slope value points up. Zero and NaN are not rising.
func Rising(slope float64) bool {
	return slope > 0
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func extractVolumes(bars []model.OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
