package model

import "time"

// Holding is one user-edited row of the portfolio table.
type Holding struct {
	Ticker    string  `json:"ticker"`
	CostBasis float64 `json:"cost_basis"`
	Target    float64 `json:"target"`
	StopLoss  float64 `json:"stop_loss"`
}

// PortfolioState is the persisted portfolio.
type PortfolioState struct {
	Holdings  []Holding `json:"holdings"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recommendation is the action suggested for a holding.
type Recommendation string

const (
	RecWatching       Recommendation = "Watching"
	RecStopLoss       Recommendation = "Emergency stop-loss"
	RecTakeProfit     Recommendation = "Take partial profit"
	RecKeepHolding    Recommendation = "Keep holding"
	RecMonitorClosely Recommendation = "Monitor closely"
)

// Quote is the live check result for one holding. Err is set when the price
// could not be fetched; the price fields are then zero.
type Quote struct {
	Holding
	Price          float64
	ProfitPct      float64
	Recommendation Recommendation
	TargetHit      bool
	StopHit        bool
	Err            error
}
