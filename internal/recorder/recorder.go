package recorder

import (
	"time"

	"WolfDesk/internal/model"
)

// AnalysisRow is a stored single-ticker analysis.
type AnalysisRow struct {
	RecordedAt time.Time
	Symbol     string
	Source     string
	Close      float64
	ChangePct  float64
	RSI        float64 // NaN when undefined
	Candle     string
	Volume     string
	MoneyFlow  string
	BuyPrice   float64
	ProfitPct  float64
}

// Recorder persists historical data for later review.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) error
	RecordScreen(report *model.ScreenReport) error
	RecordPortfolioCheck(quotes []model.Quote) error
	RecentAnalyses(symbol string, limit int) ([]AnalysisRow, error)
	Close() error
}
