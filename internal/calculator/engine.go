package calculator

import "WolfDesk/internal/model"

const (
	TrendWindow = 50
	EMASpan     = 20
	SlopeLag    = 3
)

// Enrich validates the series and computes every derived field per bar.
// It is a pure function: the input is not modified and the result shares no
// memory with it. Insufficient history yields NaN fields, never an error.
func Enrich(series *model.PriceSeries) (*model.EnrichedSeries, error) {
	if err := Validate(series); err != nil {
		return nil, err
	}

	bars := series.Bars
	closes := extractCloses(bars)
	volumes := extractVolumes(bars)

	ema20 := EMA(closes, EMASpan)
	ma50 := SMA(closes, TrendWindow)
	slope := Slope(ema20, SlopeLag)
	rsi := RSI(closes, RSIPeriod)
	macd, signal := MACD(closes)
	tr := TrueRange(bars)
	atr := SMA(tr, ATRPeriod)
	volMA := SMA(volumes, VolumeBaseline)
	volRatio := VolumeRatio(volumes, volMA)

	out := &model.EnrichedSeries{
		Symbol: series.Symbol,
		Bars:   make([]model.EnrichedBar, len(bars)),
	}
	for i, b := range bars {
		out.Bars[i] = model.EnrichedBar{
			OHLCV:       b,
			EMA20:       ema20[i],
			MA50:        ma50[i],
			MA20Slope:   slope[i],
			RSI14:       rsi[i],
			MACD:        macd[i],
			MACDSignal:  signal[i],
			TrueRange:   tr[i],
			ATR14:       atr[i],
			VolumeMA20:  volMA[i],
			VolumeRatio: volRatio[i],
		}
	}
	return out, nil
}
