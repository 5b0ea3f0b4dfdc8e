package pattern

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WolfDesk/internal/calculator"
	"WolfDesk/internal/model"
)

func bar(open, high, low, close float64) model.OHLCV {
	return model.OHLCV{Open: open, High: high, Low: low, Close: close, Volume: 1_000_000}
}

func TestClassifyCandle_Rules(t *testing.T) {
	tests := []struct {
		name string
		bar  model.OHLCV
		want model.CandlePattern
	}{
		{"zero range short-circuits", bar(10, 10, 10, 10), model.CandleDoji},
		{"tiny body", bar(10, 10.5, 9.5, 10.05), model.CandleDojiIndecision},
		// body 0.1 is within 10% of the 2.2 range, so the indecision rule fires before the hammer rule.
		{"long lower shadow with tiny body", bar(10, 10.2, 8, 10.1), model.CandleDojiIndecision},
		{"hammer", bar(10, 10.5, 8, 10.5), model.CandleHammer},
		{"bearish hammer", bar(10.5, 10.5, 8, 10), model.CandleHammer},
		{"shooting star", bar(10.5, 13, 10, 10), model.CandleShootingStar},
		{"marubozu", bar(10, 11, 9.95, 10.95), model.CandleMarubozu},
		{"bearish marubozu", bar(11, 11, 10, 10), model.CandleMarubozu},
		{"ordinary", bar(10, 11, 9, 10.6), model.CandleOrdinary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCandle(tt.bar))
		})
	}
}

func TestClassifyVolume_Boundaries(t *testing.T) {
	tests := []struct {
		ratio float64
		want  model.VolumeRegime
	}{
		{3.0, model.VolumeSpike},
		{1.301, model.VolumeSpike},
		{1.3, model.VolumeNormal},
		{1.0, model.VolumeNormal},
		{0.6, model.VolumeNormal},
		{0.599, model.VolumeDrought},
		{0, model.VolumeDrought},
		{math.NaN(), model.VolumeIndeterminate},
	}
	for _, tt := range tests {
		if got := ClassifyVolume(tt.ratio); got != tt.want {
			t.Errorf("ratio %.3f: expected %q, got %q", tt.ratio, tt.want, got)
		}
	}
}

func TestClassifyMoneyFlow(t *testing.T) {
	const ma = 1_000_000.0
	tests := []struct {
		name  string
		bar   model.OHLCV
		ma    float64
		ratio float64
		want  model.MoneyFlowTag
	}{
		{"strong close on high volume", bar(10, 10.6, 10.0, 10.5), ma, 1.5, model.FlowAccumulation},
		{"weak close on high volume", bar(10.5, 10.6, 10.0, 10.05), ma, 2.0, model.FlowDistribution},
		{"small body on high volume", bar(10.2, 10.6, 9.9, 10.3), ma, 1.4, model.FlowShakeOut},
		{"large body mid close on high volume", bar(10, 10.9, 9.9, 10.5), ma, 1.4, model.FlowNormal},
		{"flat bar on high volume", bar(10, 10, 10, 10), ma, 1.4, model.FlowNormal},
		{"low volume", bar(10, 10.6, 10.0, 10.5), ma, 0.5, model.FlowDrySupply},
		{"spike threshold is strict", bar(10, 10.6, 10.0, 10.5), ma, 1.3, model.FlowNormal},
		{"drought threshold is strict", bar(10, 10.6, 10.0, 10.5), ma, 0.6, model.FlowNormal},
		{"zero baseline", bar(10, 10.6, 10.0, 10.5), 0, math.NaN(), model.FlowIndeterminate},
		{"undefined baseline", bar(10, 10.6, 10.0, 10.5), math.NaN(), math.NaN(), model.FlowIndeterminate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMoneyFlow(tt.bar, tt.ma, tt.ratio))
		})
	}
}

func TestClassify_EmptySeries(t *testing.T) {
	_, err := Classify(&model.EnrichedSeries{Symbol: "VIC"})
	assert.ErrorIs(t, err, ErrNoBars)
	_, err = Classify(nil)
	assert.ErrorIs(t, err, ErrNoBars)
}

// A steady 0.1 daily gain with open at the low and close at the high gives a
// rising trend, full-body candles and a flat volume ratio of 1.
func TestPipeline_SteadyUptrend(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 60)
	for i := range bars {
		c := 20 + 0.1*float64(i+1)
		o := c - 0.1
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: o, High: c, Low: o, Close: c, Volume: 500_000}
	}

	series, err := calculator.Enrich(&model.PriceSeries{Symbol: "HPG", Bars: bars})
	require.NoError(t, err)

	for i, b := range series.Bars {
		cls := ClassifyBar(b)
		assert.Equal(t, model.CandleMarubozu, cls.Candle, "bar %d", i)
		if i >= calculator.SlopeLag {
			assert.True(t, calculator.Rising(b.MA20Slope), "bar %d slope %.6f", i, b.MA20Slope)
		}
		if i >= calculator.VolumeBaseline-1 {
			assert.InDelta(t, 1.0, b.VolumeRatio, 1e-12)
			assert.Equal(t, model.VolumeNormal, cls.Volume, "bar %d", i)
			assert.Equal(t, model.FlowNormal, cls.MoneyFlow, "bar %d", i)
		} else {
			assert.Equal(t, model.VolumeIndeterminate, cls.Volume, "bar %d", i)
		}
	}

	last, err := Classify(series)
	require.NoError(t, err)
	assert.Equal(t, model.CandleMarubozu, last.Candle)
	assert.Equal(t, 100.0, series.Bars[59].RSI14)
}
