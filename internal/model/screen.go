package model

import "time"

// ScreenCriteria selects tickers from the watchlist.
type ScreenCriteria struct {
	RSIMin      float64
	RSIMax      float64
	RequireMA50 bool
	RequireMACD bool
}

// ScreenHit is a ticker that passed every filter.
type ScreenHit struct {
	Symbol      string
	Price       float64
	ChangePct   float64
	RSI         float64
	VolumeRatio float64
	Tags        []string
	Candle      CandlePattern
	MoneyFlow   MoneyFlowTag
}

// ScreenReport is the outcome of one screener run.
type ScreenReport struct {
	Criteria  ScreenCriteria
	Hits      []ScreenHit
	Scanned   int
	Skipped   int
	Failed    map[string]string // ticker -> error text
	StartedAt time.Time
	Duration  time.Duration
}
