package collector

import (
	"context"
	"time"

	"WolfDesk/internal/model"
)

// DataSource fetches daily OHLCV history for a ticker over [from, to].
// Implementations return bars oldest first.
type DataSource interface {
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error)
	Name() string
}
