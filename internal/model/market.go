package model

import "time"

// OHLCV represents a single daily trading bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds raw daily bars for one ticker, oldest first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar and false if the series is empty.
func (s *PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
