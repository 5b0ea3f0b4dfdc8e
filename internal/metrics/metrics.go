package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Screen outcomes used as label values.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing, so packages can be used without a registry.
type Metrics struct {
	FetchDuration   *prometheus.HistogramVec // labels: source
	FetchErrors     *prometheus.CounterVec   // labels: source
	CacheRequests   *prometheus.CounterVec   // labels: result=hit|miss
	ScreenedTickers *prometheus.CounterVec   // labels: outcome
	ScreenDuration  prometheus.Histogram
	PortfolioChecks prometheus.Counter
	Analyses        prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wolfdesk_fetch_duration_seconds",
			Help:    "Price history fetch latency by data source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wolfdesk_fetch_errors_total",
			Help: "Failed price history fetches by data source",
		}, []string{"source"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wolfdesk_cache_requests_total",
			Help: "Price cache lookups by result",
		}, []string{"result"}),
		ScreenedTickers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wolfdesk_screened_tickers_total",
			Help: "Tickers evaluated by the screener by outcome",
		}, []string{"outcome"}),
		ScreenDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wolfdesk_screen_duration_seconds",
			Help:    "Wall time of a full watchlist screen",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		PortfolioChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wolfdesk_portfolio_checks_total",
			Help: "Portfolio price checks performed",
		}),
		Analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wolfdesk_analyses_total",
			Help: "Single-ticker analyses performed",
		}),
	}
	reg.MustRegister(
		m.FetchDuration, m.FetchErrors, m.CacheRequests,
		m.ScreenedTickers, m.ScreenDuration, m.PortfolioChecks, m.Analyses,
	)
	return m
}

func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ScreenOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ScreenedTickers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveScreen(d time.Duration) {
	if m == nil {
		return
	}
	m.ScreenDuration.Observe(d.Seconds())
}

func (m *Metrics) PortfolioChecked() {
	if m == nil {
		return
	}
	m.PortfolioChecks.Inc()
}

func (m *Metrics) Analyzed() {
	if m == nil {
		return
	}
	m.Analyses.Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] metrics server shutdown: %v", err)
		}
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
