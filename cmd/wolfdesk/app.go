package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"WolfDesk/internal/cache"
	"WolfDesk/internal/collector"
	"WolfDesk/internal/config"
	"WolfDesk/internal/metrics"
	"WolfDesk/internal/model"
	"WolfDesk/internal/notifier"
	"WolfDesk/internal/portfolio"
	"WolfDesk/internal/recorder"
	"WolfDesk/internal/screener"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	collector *collector.Collector
	quotes    *collector.Collector // uncached, for live portfolio prices
	screener  *screener.Screener
	portfolio *portfolio.Manager
	recorder  recorder.Recorder
	notifier  notifier.Notifier
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	// Data source
	var src collector.DataSource
	switch cfg.DataSource.Provider {
	case "mock":
		src = &collector.MockSource{Price: cfg.DataSource.MockPrice}
	default:
		src = collector.NewVNDirectSource(cfg.DataSource.BaseURL, cfg.Proxy)
	}

	// Live quotes bypass the history cache.
	a.quotes = collector.NewCollector(src, a.metrics)

	// Cache
	policy := cache.Policy{TTL: cfg.Cache.TTL}
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, policy)
		if err != nil {
			log.Printf("[WARN] redis cache unavailable, using memory: %v", err)
			src = collector.NewCachedSource(src, cache.NewMemoryStore(policy), a.metrics)
		} else {
			a.closers = append(a.closers, rs.Close)
			src = collector.NewCachedSource(src, rs, a.metrics)
		}
	case "memory":
		src = collector.NewCachedSource(src, cache.NewMemoryStore(policy), a.metrics)
	}
	log.Printf("[INFO] data source: %s (cache: %s)", src.Name(), cfg.Cache.Backend)

	a.collector = collector.NewCollector(src, a.metrics)
	a.screener = screener.New(a.collector, cfg.Screener.Workers, a.metrics)

	pm, err := portfolio.NewManager(cfg.Portfolio.StateFile)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init portfolio: %w", err)
	}
	pm.Metrics = a.metrics
	a.portfolio = pm

	// Recorder
	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	}

	if cfg.TelegramEnabled() {
		a.notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		a.notifier = notifier.LogNotifier{}
	}
	return a, nil
}

func (a *app) watchlist() []string {
	if len(a.cfg.Screener.Watchlist) > 0 {
		return a.cfg.Screener.Watchlist
	}
	return screener.DefaultWatchlist
}

func (a *app) criteria() model.ScreenCriteria {
	return model.ScreenCriteria{
		RSIMin:      a.cfg.Screener.RSIMin,
		RSIMax:      a.cfg.Screener.RSIMax,
		RequireMA50: a.cfg.Screener.RequireMA50,
		RequireMACD: a.cfg.Screener.RequireMACD,
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("[WARN] close: %v", err)
		}
	}
	a.closers = nil
}
