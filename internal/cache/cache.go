// Package cache stores fetched price history with an externally configured
// expiry. It sits in front of a data source and never touches indicator code.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"WolfDesk/internal/model"
)

// Entry is a cached value and the time it was stored.
type Entry struct {
	Bars     []model.OHLCV `json:"bars"`
	StoredAt time.Time     `json:"stored_at"`
}

// Store is a key -> (bars, storedAt) store. Get returns false for missing or
// expired keys.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, bars []model.OHLCV) error
	Name() string
}

// Policy decides when an entry expires. A zero TTL disables expiry.
type Policy struct {
	TTL time.Duration
	Now func() time.Time
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Fresh reports whether an entry stored at storedAt is still valid.
func (p Policy) Fresh(storedAt time.Time) bool {
	if p.TTL <= 0 {
		return true
	}
	return p.now().Sub(storedAt) <= p.TTL
}

// Key builds a stable cache key for a daily history request.
func Key(source, symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", source, strings.ToUpper(symbol),
		from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func cloneBars(bars []model.OHLCV) []model.OHLCV {
	if bars == nil {
		return nil
	}
	return append(make([]model.OHLCV, 0, len(bars)), bars...)
}
