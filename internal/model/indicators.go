package model

// EnrichedBar is a daily bar plus every derived indicator value.
// A NaN field means the value is undefined for this bar (not enough history
// or a zero denominator).
type EnrichedBar struct {
	OHLCV

	EMA20       float64
	MA50        float64
	MA20Slope   float64 // EMA20[t] - EMA20[t-3]
	RSI14       float64
	MACD        float64
	MACDSignal  float64
	TrueRange   float64
	ATR14       float64
	VolumeMA20  float64
	VolumeRatio float64
}

// EnrichedSeries is produced once by the indicator engine and only read afterwards.
type EnrichedSeries struct {
	Symbol string
	Bars   []EnrichedBar
}

// Len returns the number of bars.
func (s *EnrichedSeries) Len() int { return len(s.Bars) }

// Last returns the most recent enriched bar and false if the series is empty.
func (s *EnrichedSeries) Last() (EnrichedBar, bool) {
	if len(s.Bars) == 0 {
		return EnrichedBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Previous returns the bar before the most recent one and false if there is none.
func (s *EnrichedSeries) Previous() (EnrichedBar, bool) {
	if len(s.Bars) < 2 {
		return EnrichedBar{}, false
	}
	return s.Bars[len(s.Bars)-2], true
}
