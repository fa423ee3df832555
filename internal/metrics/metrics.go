// Package metrics provides the centralized Prometheus registry for the
// backtesting service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpilot",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by strategy and status",
	}, []string{"strategy", "status"})
	SweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stockpilot",
		Name:      "sweeps_total",
		Help:      "Total number of parameter sweeps executed",
	})
	MarketDataFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockpilot",
		Name:      "market_data_fetches_total",
		Help:      "Total number of market data fetches by source and status",
	}, []string{"source", "status"})
	MarketDataCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stockpilot",
		Name:      "market_data_cache_hits_total",
		Help:      "Total number of market data cache hits",
	})
)

// Gauge metrics
var (
	PoolSymbols = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stockpilot",
		Name:      "pool_symbols",
		Help:      "Number of symbols tracked per pool",
	}, []string{"pool"})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stockpilot",
		Name:      "backtest_run_duration_seconds",
		Help:      "Duration of individual backtest runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stockpilot",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of parameter sweeps in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(SweepsTotal)
		registry.MustRegister(MarketDataFetchesTotal)
		registry.MustRegister(MarketDataCacheHitsTotal)

		registry.MustRegister(PoolSymbols)

		registry.MustRegister(RunDuration)
		registry.MustRegister(SweepDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records one finished backtest run.
// status should be "success" or "failure".
func RecordRun(strategy, status string) {
	RunsTotal.WithLabelValues(strategy, status).Inc()
}

// RecordRunDuration records how long one backtest run took.
func RecordRunDuration(seconds float64) {
	RunDuration.Observe(seconds)
}

// RecordSweep records one finished parameter sweep.
func RecordSweep(seconds float64) {
	SweepsTotal.Inc()
	SweepDuration.Observe(seconds)
}

// RecordMarketDataFetch records a market data fetch attempt.
// status should be "success", "failure" or "fallback".
func RecordMarketDataFetch(source, status string) {
	MarketDataFetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordMarketDataCacheHit records a served-from-cache series lookup.
func RecordMarketDataCacheHit() {
	MarketDataCacheHitsTotal.Inc()
}

// UpdatePoolSize updates the tracked-symbol count for one pool.
func UpdatePoolSize(pool string, count int) {
	PoolSymbols.WithLabelValues(pool).Set(float64(count))
}
