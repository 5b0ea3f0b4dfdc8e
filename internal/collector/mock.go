package collector

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"WolfDesk/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
// Bars and Errs are keyed by upper-case symbol; other symbols get generated
// bars around Price.
type MockSource struct {
	Price float64
	Bars  map[string][]model.OHLCV
	Errs  map[string]error

	calls atomic.Int64
}

func (m *MockSource) Name() string { return "mock" }

// Calls returns how many fetches reached the source.
func (m *MockSource) Calls() int { return int(m.calls.Load()) }

func (m *MockSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.calls.Add(1)
	symbol = strings.ToUpper(symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return append([]model.OHLCV(nil), bars...), nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("mock: no data for %s", symbol)
	}
	days := int(to.Sub(from).Hours()/24) + 1
	return GenerateMockBars(m.Price, days, to), nil
}

// GenerateMockBars builds count valid daily bars ending at end, drifting
// slightly upward around basePrice.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	if count <= 0 {
		return nil
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
