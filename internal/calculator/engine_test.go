package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WolfDesk/internal/model"
)

func TestEnrich_WarmUpWindows(t *testing.T) {
	series := &model.PriceSeries{Symbol: "FPT", Bars: barsFromCloses(waveCloses(70))}
	out, err := Enrich(series)
	require.NoError(t, err)
	require.Equal(t, 70, out.Len())
	assert.Equal(t, "FPT", out.Symbol)

	firstDefined := func(get func(model.EnrichedBar) float64) int {
		for i, b := range out.Bars {
			if !math.IsNaN(get(b)) {
				return i
			}
		}
		return -1
	}
	assert.Equal(t, 0, firstDefined(func(b model.EnrichedBar) float64 { return b.EMA20 }))
	assert.Equal(t, 0, firstDefined(func(b model.EnrichedBar) float64 { return b.MACD }))
	assert.Equal(t, 0, firstDefined(func(b model.EnrichedBar) float64 { return b.MACDSignal }))
	assert.Equal(t, 0, firstDefined(func(b model.EnrichedBar) float64 { return b.TrueRange }))
	assert.Equal(t, 3, firstDefined(func(b model.EnrichedBar) float64 { return b.MA20Slope }))
	assert.Equal(t, 13, firstDefined(func(b model.EnrichedBar) float64 { return b.ATR14 }))
	assert.Equal(t, 14, firstDefined(func(b model.EnrichedBar) float64 { return b.RSI14 }))
	assert.Equal(t, 19, firstDefined(func(b model.EnrichedBar) float64 { return b.VolumeMA20 }))
	assert.Equal(t, 19, firstDefined(func(b model.EnrichedBar) float64 { return b.VolumeRatio }))
	assert.Equal(t, 49, firstDefined(func(b model.EnrichedBar) float64 { return b.MA50 }))
}

func TestEnrich_ShortSeriesIsNotAnError(t *testing.T) {
	out, err := Enrich(&model.PriceSeries{Symbol: "PDR", Bars: barsFromCloses(waveCloses(5))})
	require.NoError(t, err)
	last, ok := out.Last()
	require.True(t, ok)
	assert.True(t, math.IsNaN(last.MA50))
	assert.True(t, math.IsNaN(last.RSI14))
	assert.True(t, math.IsNaN(last.VolumeRatio))
	assert.False(t, math.IsNaN(last.EMA20))
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	bars := barsFromCloses(waveCloses(30))
	snapshot := append([]model.OHLCV(nil), bars...)
	out, err := Enrich(&model.PriceSeries{Symbol: "MWG", Bars: bars})
	require.NoError(t, err)
	assert.Equal(t, snapshot, bars)

	out.Bars[0].Close = 999
	assert.Equal(t, snapshot[0].Close, bars[0].Close)
}

func TestEnrich_RejectsMalformedInput(t *testing.T) {
	bars := barsFromCloses(waveCloses(10))
	bars[6].High = bars[6].Low - 1
	out, err := Enrich(&model.PriceSeries{Symbol: "NVL", Bars: bars})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, ErrMalformedBar))
}

func TestEnrich_ZeroVolumeBaseline(t *testing.T) {
	bars := barsFromCloses(waveCloses(25))
	for i := range bars {
		bars[i].Volume = 0
	}
	out, err := Enrich(&model.PriceSeries{Symbol: "CEO", Bars: bars})
	require.NoError(t, err)
	last, _ := out.Last()
	assert.Equal(t, 0.0, last.VolumeMA20)
	assert.True(t, math.IsNaN(last.VolumeRatio))
}
