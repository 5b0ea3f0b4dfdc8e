package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI_ShortSeriesAllUndefined(t *testing.T) {
	for n := 0; n < RSIPeriod+1; n++ {
		for i, v := range RSI(waveCloses(n), RSIPeriod) {
			assert.True(t, math.IsNaN(v), "len %d index %d", n, i)
		}
	}
}

func TestRSI_FirstDefinedIndex(t *testing.T) {
	got := RSI(waveCloses(40), RSIPeriod)
	for i := 0; i < RSIPeriod; i++ {
		assert.True(t, math.IsNaN(got[i]), "index %d", i)
	}
	for i := RSIPeriod; i < len(got); i++ {
		assert.False(t, math.IsNaN(got[i]), "index %d", i)
	}
}

func TestRSI_Bounded(t *testing.T) {
	for _, v := range RSI(waveCloses(200), RSIPeriod) {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSI_NoLossesIsExactly100(t *testing.T) {
	closes := []float64{10, 10.1, 10.1, 10.3, 10.4, 10.4, 10.6, 10.7, 10.9, 11, 11, 11.2, 11.5, 11.6, 11.8, 12}
	got := RSI(closes, RSIPeriod)
	assert.Equal(t, 100.0, got[14])
	assert.Equal(t, 100.0, got[15])
}

func TestRSI_HandCalculated(t *testing.T) {
	// Period 2 over closes 10, 11, 10, 12:
	// diffs +1, -1, +2
	// index 2: gain (1+0)/2 = 0.5, loss (0+1)/2 = 0.5 -> RS 1 -> 50
	// index 3: gain (0+2)/2 = 1, loss (1+0)/2 = 0.5 -> RS 2 -> 66.67
	got := RSI([]float64{10, 11, 10, 12}, 2)
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 50.0, got[2], 1e-9)
	assert.InDelta(t, 100.0-100.0/3.0, got[3], 1e-9)
}
