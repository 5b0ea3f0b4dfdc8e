package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"WolfDesk/internal/metrics"
	"WolfDesk/internal/model"
)

var ErrInvalidHolding = errors.New("invalid holding")

// PriceSource returns the latest close for a ticker.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (float64, error)
}

// Manager owns the persisted holdings table with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.PortfolioState
	filePath string
	Metrics  *metrics.Metrics
}

// NewManager creates a Manager, loading state from disk or seeding the default holdings.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	m := &Manager{state: state, filePath: filePath}
	if state == nil {
		m.state = &model.PortfolioState{Holdings: DefaultHoldings()}
		if err := m.save(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Holdings returns a copy of the current holdings.
func (m *Manager) Holdings() []model.Holding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Holding(nil), m.state.Holdings...)
}

// Upsert adds a holding or replaces the one with the same ticker.
func (m *Manager) Upsert(h model.Holding) error {
	h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
	if err := validateHolding(h); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	replaced := false
	for i := range m.state.Holdings {
		if m.state.Holdings[i].Ticker == h.Ticker {
			m.state.Holdings[i] = h
			replaced = true
			break
		}
	}
	if !replaced {
		m.state.Holdings = append(m.state.Holdings, h)
	}
	return m.save()
}

// Remove deletes the holding for ticker and reports whether it existed.
func (m *Manager) Remove(ticker string) (bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range m.state.Holdings {
		if h.Ticker == ticker {
			m.state.Holdings = append(m.state.Holdings[:i], m.state.Holdings[i+1:]...)
			return true, m.save()
		}
	}
	return false, nil
}

// Check prices every holding. A failed quote is reported in Quote.Err and
// does not stop the remaining holdings.
func (m *Manager) Check(ctx context.Context, src PriceSource) []model.Quote {
	holdings := m.Holdings()
	quotes := make([]model.Quote, 0, len(holdings))
	for _, h := range holdings {
		if ctx.Err() != nil {
			quotes = append(quotes, model.Quote{Holding: h, Recommendation: model.RecWatching, Err: ctx.Err()})
			continue
		}
		quotes = append(quotes, Evaluate(ctx, h, src))
	}
	m.Metrics.PortfolioChecked()
	return quotes
}

// Evaluate prices a single holding.
func Evaluate(ctx context.Context, h model.Holding, src PriceSource) model.Quote {
	q := model.Quote{Holding: h, Recommendation: model.RecWatching}
	if h.Ticker == "" {
		return q
	}
	price, err := src.LatestClose(ctx, h.Ticker)
	if err != nil {
		q.Err = err
		return q
	}
	q.Price = price
	q.Recommendation = Recommend(price, h.CostBasis)
	if price > 0 && h.CostBasis > 0 {
		q.ProfitPct = ProfitPct(price, h.CostBasis)
	}
	q.TargetHit = h.Target > 0 && price >= h.Target
	q.StopHit = price > 0 && h.StopLoss > 0 && price <= h.StopLoss
	return q
}

func validateHolding(h model.Holding) error {
	switch {
	case h.Ticker == "":
		return fmt.Errorf("%w: empty ticker", ErrInvalidHolding)
	case len(h.Ticker) > 10:
		return fmt.Errorf("%w: ticker %q longer than 10 characters", ErrInvalidHolding, h.Ticker)
	case h.CostBasis < 0 || h.Target < 0 || h.StopLoss < 0:
		return fmt.Errorf("%w: negative price for %s", ErrInvalidHolding, h.Ticker)
	}
	return nil
}

// save must be called with mu held.
func (m *Manager) save() error {
	if err := SaveState(m.filePath, m.state); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}
