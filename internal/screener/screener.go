// Package screener scans a watchlist for tickers matching technical criteria.
package screener

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"WolfDesk/internal/collector"
	"WolfDesk/internal/metrics"
	"WolfDesk/internal/model"
	"WolfDesk/internal/pattern"
)

const (
	LookbackDays   = 90
	MinBars        = 50
	DefaultWorkers = 4
)

// DefaultWatchlist covers liquid HOSE/HNX names across brokers, steel,
// real estate, banks, retail and industrials.
var DefaultWatchlist = []string{
	"SSI", "VND", "HCM", "VCI", "SHS",
	"HPG", "HSG", "NKG",
	"DIG", "DXG", "CEO", "NVL", "PDR", "KBC", "VHM", "VIC",
	"TCB", "MBB", "VPB", "ACB", "STB", "CTG", "BID",
	"FPT", "MWG", "PNJ", "DGC", "VNM", "MSN",
	"GEX", "PC1", "VGC",
}

// DefaultCriteria matches a healthy uptrend with room before overbought.
func DefaultCriteria() model.ScreenCriteria {
	return model.ScreenCriteria{RSIMin: 40, RSIMax: 70, RequireMA50: true}
}

var ErrTooFewBars = errors.New("too few bars to screen")

// TickerResult is the outcome for one ticker. Exactly one of Hit, Skipped or
// Err describes it; a nil Hit with no Err and Skipped false is a miss.
type TickerResult struct {
	Symbol  string
	Hit     *model.ScreenHit
	Skipped bool
	Err     error
}

func (r TickerResult) outcome() string {
	switch {
	case r.Err != nil:
		return metrics.OutcomeFailed
	case r.Skipped:
		return metrics.OutcomeSkipped
	case r.Hit != nil:
		return metrics.OutcomeHit
	default:
		return metrics.OutcomeMiss
	}
}

// Screener fans tickers out to a bounded pool of workers.
type Screener struct {
	Collector *collector.Collector
	Workers   int
	Metrics   *metrics.Metrics
}

// New creates a Screener. workers <= 0 uses DefaultWorkers.
func New(c *collector.Collector, workers int, m *metrics.Metrics) *Screener {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Screener{Collector: c, Workers: workers, Metrics: m}
}

// Run screens every ticker and returns the report with hits sorted by
// percentage change, highest first. A failing ticker is recorded in
// report.Failed and does not affect the others. The returned error is only
// the context error when the run was cancelled; the partial report is
// still returned.
func (s *Screener) Run(ctx context.Context, tickers []string, criteria model.ScreenCriteria) (*model.ScreenReport, error) {
	start := time.Now()
	results := make([]TickerResult, len(tickers))

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		i, ticker := i, ticker
		g.Go(func() error {
			results[i] = s.ScreenTicker(ctx, ticker, criteria)
			return nil
		})
	}
	_ = g.Wait()

	report := &model.ScreenReport{
		Criteria:  criteria,
		Failed:    make(map[string]string),
		StartedAt: start,
	}
	for _, r := range results {
		if r.Symbol == "" {
			continue // never scheduled
		}
		report.Scanned++
		s.Metrics.ScreenOutcome(r.outcome())
		switch {
		case r.Err != nil:
			report.Failed[r.Symbol] = r.Err.Error()
			log.Printf("[WARN] Screen %s failed: %v", r.Symbol, r.Err)
		case r.Skipped:
			report.Skipped++
		case r.Hit != nil:
			report.Hits = append(report.Hits, *r.Hit)
		}
	}
	sort.SliceStable(report.Hits, func(i, j int) bool {
		return report.Hits[i].ChangePct > report.Hits[j].ChangePct
	})
	report.Duration = time.Since(start)
	s.Metrics.ObserveScreen(report.Duration)

	log.Printf("[INFO] Screen done: %d scanned, %d hits, %d skipped, %d failed in %s",
		report.Scanned, len(report.Hits), report.Skipped, len(report.Failed), report.Duration.Round(time.Millisecond))
	return report, ctx.Err()
}

// ScreenTicker fetches, enriches and evaluates one ticker.
func (s *Screener) ScreenTicker(ctx context.Context, ticker string, criteria model.ScreenCriteria) TickerResult {
	res := TickerResult{Symbol: strings.ToUpper(strings.TrimSpace(ticker))}
	series, err := s.Collector.Enriched(ctx, res.Symbol, LookbackDays)
	if err != nil {
		res.Err = err
		return res
	}
	if series.Len() < MinBars {
		res.Skipped = true
		return res
	}
	hit, ok, err := Evaluate(series, criteria)
	if err != nil {
		res.Err = err
		return res
	}
	if ok {
		res.Hit = &hit
	}
	return res
}

// Evaluate applies criteria to the last bar of series.
func Evaluate(series *model.EnrichedSeries, criteria model.ScreenCriteria) (model.ScreenHit, bool, error) {
	last, ok := series.Last()
	prev, okPrev := series.Previous()
	if !ok || !okPrev {
		return model.ScreenHit{}, false, fmt.Errorf("evaluate %s: %w", series.Symbol, ErrTooFewBars)
	}

	// NaN fails both comparisons.
	if !(last.RSI14 >= criteria.RSIMin && last.RSI14 <= criteria.RSIMax) {
		return model.ScreenHit{}, false, nil
	}

	var tags []string
	if criteria.RequireMA50 {
		if !(last.Close >= last.MA50) {
			return model.ScreenHit{}, false, nil
		}
		tags = append(tags, "Uptrend")
	}
	if criteria.RequireMACD {
		if !(last.MACD >= last.MACDSignal) {
			return model.ScreenHit{}, false, nil
		}
		tags = append(tags, "MACD above signal")
	}

	ratio := last.VolumeRatio
	if math.IsNaN(ratio) {
		ratio = 0
	}
	if ratio > pattern.SpikeRatio {
		tags = append(tags, "Volume spike")
	} else if !criteria.RequireMA50 && !criteria.RequireMACD {
		return model.ScreenHit{}, false, nil
	}

	cls := pattern.ClassifyBar(last)
	return model.ScreenHit{
		Symbol:      series.Symbol,
		Price:       last.Close,
		ChangePct:   (last.Close - prev.Close) / prev.Close * 100,
		RSI:         last.RSI14,
		VolumeRatio: ratio,
		Tags:        tags,
		Candle:      cls.Candle,
		MoneyFlow:   cls.MoneyFlow,
	}, true, nil
}
