package calculator

import "math"

// VolumeBaseline is the window of the volume moving average.
const VolumeBaseline = 20

// VolumeRatio divides each volume by its baseline. It is NaN wherever the
// baseline is zero or undefined.
func VolumeRatio(volumes, baseline []float64) []float64 {
	out := nanSeries(len(volumes))
	for i := range volumes {
		if i >= len(baseline) {
			break
		}
		b := baseline[i]
		if math.IsNaN(b) || b == 0 {
			continue
		}
		out[i] = volumes[i] / b
	}
	return out
}
