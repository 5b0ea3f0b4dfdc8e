package pattern

import (
	"math"

	"WolfDesk/internal/model"
)

// Volume ratio thresholds. Both comparisons are strict.
const (
	SpikeRatio   = 1.3
	DroughtRatio = 0.6
)

// ClassifyVolume maps volume / volumeMA20 to a regime. A NaN ratio (zero or
// undefined baseline) is indeterminate.
func ClassifyVolume(ratio float64) model.VolumeRegime {
	switch {
	case math.IsNaN(ratio):
		return model.VolumeIndeterminate
	case ratio > SpikeRatio:
		return model.VolumeSpike
	case ratio < DroughtRatio:
		return model.VolumeDrought
	default:
		return model.VolumeNormal
	}
}

// ClassifyMoneyFlow applies the accumulation/distribution heuristic to one
// bar. The high-volume branch is checked before the low-volume one.
func ClassifyMoneyFlow(b model.OHLCV, volumeMA20, ratio float64) model.MoneyFlowTag {
	if math.IsNaN(volumeMA20) || volumeMA20 == 0 || math.IsNaN(ratio) {
		return model.FlowIndeterminate
	}

	rng := b.High - b.Low
	switch {
	case ratio > SpikeRatio:
		switch {
		case b.Close > b.Open && (b.High-b.Close) < 0.3*rng:
			return model.FlowAccumulation
		case b.Close < b.Open && (b.Close-b.Low) < 0.3*rng:
			return model.FlowDistribution
		case rng > 0 && math.Abs(b.Close-b.Open)/rng < 0.3:
			return model.FlowShakeOut
		default:
			return model.FlowNormal
		}
	case ratio < DroughtRatio:
		return model.FlowDrySupply
	default:
		return model.FlowNormal
	}
}
