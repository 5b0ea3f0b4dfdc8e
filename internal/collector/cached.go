package collector

import (
	"context"
	"log"
	"time"

	"WolfDesk/internal/cache"
	"WolfDesk/internal/metrics"
	"WolfDesk/internal/model"
)

// CachedSource decorates a DataSource with a cache.Store. Cache failures are
// logged and fall through to the wrapped source.
type CachedSource struct {
	Source  DataSource
	Store   cache.Store
	Metrics *metrics.Metrics
}

// NewCachedSource wraps src with store.
func NewCachedSource(src DataSource, store cache.Store, m *metrics.Metrics) *CachedSource {
	return &CachedSource{Source: src, Store: store, Metrics: m}
}

func (c *CachedSource) Name() string { return c.Source.Name() }

func (c *CachedSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	key := cache.Key(c.Source.Name(), symbol, from, to)

	entry, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] %s cache get %s: %v", c.Store.Name(), key, err)
	}
	c.Metrics.CacheResult(ok)
	if ok {
		return entry.Bars, nil
	}

	bars, err := c.Source.FetchDailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Set(ctx, key, bars); err != nil {
		log.Printf("[WARN] %s cache set %s: %v", c.Store.Name(), key, err)
	}
	return bars, nil
}
