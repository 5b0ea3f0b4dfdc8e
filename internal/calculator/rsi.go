package calculator

import "math"

// RSIPeriod is the lookback used by the engine.
const RSIPeriod = 14

// RSI computes the relative strength index from simple trailing averages of
// bar-over-bar gains and losses. The first defined value is at index period,
// since it needs period differences. When the average loss is zero the RSI is
// exactly 100.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(closes); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
