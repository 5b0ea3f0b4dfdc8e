package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"WolfDesk/internal/calculator"
	"WolfDesk/internal/metrics"
	"WolfDesk/internal/model"
	"WolfDesk/internal/pattern"
	"WolfDesk/internal/portfolio"
)

// Lookbacks in calendar days.
const (
	AnalysisLookbackDays = 365
	QuoteLookbackDays    = 7
)

var ErrNotEnoughBars = errors.New("not enough bars")

// Collector runs fetch -> enrich -> classify for one ticker at a time.
type Collector struct {
	Source  DataSource
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(src DataSource, m *metrics.Metrics) *Collector {
	return &Collector{Source: src, Metrics: m, Now: time.Now}
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Series fetches the last days calendar days of daily bars.
func (c *Collector) Series(ctx context.Context, symbol string, days int) (*model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("empty symbol")
	}
	to := c.now()
	from := to.AddDate(0, 0, -days)

	start := time.Now()
	bars, err := c.Source.FetchDailyBars(ctx, symbol, from, to)
	c.Metrics.ObserveFetch(c.Source.Name(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars: %w", symbol, err)
	}
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: to}, nil
}

// Enriched fetches and enriches a series.
func (c *Collector) Enriched(ctx context.Context, symbol string, days int) (*model.EnrichedSeries, error) {
	series, err := c.Series(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	return calculator.Enrich(series)
}

// Analyze computes the full single-ticker view. buyPrice <= 0 means the
// ticker is not held.
func (c *Collector) Analyze(ctx context.Context, symbol string, buyPrice float64) (*model.Analysis, error) {
	enriched, err := c.Enriched(ctx, symbol, AnalysisLookbackDays)
	if err != nil {
		return nil, err
	}
	last, ok := enriched.Last()
	prev, okPrev := enriched.Previous()
	if !ok || !okPrev {
		return nil, fmt.Errorf("analyze %s: %w (have %d, need 2)", enriched.Symbol, ErrNotEnoughBars, enriched.Len())
	}
	cls, err := pattern.Classify(enriched)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", enriched.Symbol, err)
	}

	a := &model.Analysis{
		Symbol:         enriched.Symbol,
		Source:         c.Source.Name(),
		Series:         enriched,
		Last:           last,
		Change:         last.Close - prev.Close,
		ChangePct:      (last.Close - prev.Close) / prev.Close * 100,
		TrendRising:    calculator.Rising(last.MA20Slope),
		AboveEMA20:     last.Close > last.EMA20,
		Classification: cls,
	}
	if buyPrice > 0 {
		pct := portfolio.ProfitPct(last.Close, buyPrice)
		a.Position = &model.Position{
			BuyPrice:  buyPrice,
			ProfitPct: pct,
			Note:      portfolio.PositionNote(pct),
		}
	}
	c.Metrics.Analyzed()
	return a, nil
}

// LatestClose returns the most recent close within the quote lookback.
func (c *Collector) LatestClose(ctx context.Context, symbol string) (float64, error) {
	series, err := c.Series(ctx, symbol, QuoteLookbackDays)
	if err != nil {
		return 0, err
	}
	last, ok := series.Last()
	if !ok {
		return 0, fmt.Errorf("quote %s: %w", series.Symbol, ErrNotEnoughBars)
	}
	return last.Close, nil
}
