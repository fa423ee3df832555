package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/feed"
	"github.com/yourusername/stockpilot/internal/metrics"
	"github.com/yourusername/stockpilot/internal/strategy"
)

// Metric names a sortable result column.
type Metric string

const (
	MetricTotalReturn Metric = "total_return_pct"
	MetricSharpe      Metric = "sharpe_ratio"
	MetricMaxDrawdown Metric = "max_drawdown_pct"
	MetricWinRate     Metric = "win_rate"
	MetricFinalEquity Metric = "final_equity"
)

// Value extracts the named metric from a Metrics value.
func (m Metric) Value(metrics Metrics) float64 {
	switch m {
	case MetricSharpe:
		return metrics.SharpeRatio
	case MetricMaxDrawdown:
		return metrics.MaxDrawdownPct
	case MetricWinRate:
		return metrics.WinRate
	case MetricFinalEquity:
		return metrics.FinalEquity
	default:
		return metrics.TotalReturnPct
	}
}

// Grid maps parameter names to candidate values. A sweep runs the cartesian
// product of all lists.
type Grid map[string][]any

// Combinations expands the grid into parameter maps, in deterministic order
// (keys sorted, values in declaration order).
func (g Grid) Combinations() []map[string]any {
	if len(g) == 0 {
		return []map[string]any{{}}
	}

	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]any{{}}
	for _, key := range keys {
		values := g[key]
		next := make([]map[string]any, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, v := range values {
				extended := make(map[string]any, len(combo)+1)
				for ck, cv := range combo {
					extended[ck] = cv
				}
				extended[key] = v
				next = append(next, extended)
			}
		}
		combos = next
	}
	return combos
}

// Row is one sweep result: either a successful run or a recorded failure.
// Failed combinations never abort the sweep and are never silently dropped.
type Row struct {
	Params map[string]any `json:"params"`
	Result *Result        `json:"result,omitempty"`
	Err    string         `json:"error,omitempty"`
}

// Failed reports whether this combination's run failed.
func (r Row) Failed() bool {
	return r.Err != ""
}

// Report is the aggregated outcome of one parameter sweep, sorted by the
// configured metric descending with failed rows last.
type Report struct {
	Strategy string `json:"strategy"`
	SortBy   Metric `json:"sort_by"`
	Rows     []Row  `json:"rows"`
}

// SweepConfig configures a parameter sweep.
type SweepConfig struct {
	Run     RunConfig
	Workers int
	SortBy  Metric
}

// Sweeper runs a backtest per grid combination on a bounded worker pool.
// Combinations are independent: each gets a fresh engine, simulator and
// strategy instance, sharing only the immutable feed.
type Sweeper struct {
	registry *strategy.Registry
	logger   *logrus.Logger
}

// NewSweeper creates a Sweeper using the given strategy registry.
func NewSweeper(registry *strategy.Registry, logger *logrus.Logger) *Sweeper {
	if logger == nil {
		logger = logrus.New()
	}
	return &Sweeper{registry: registry, logger: logger}
}

// Run executes the sweep. Cancelling the context stops the sweep after the
// in-flight combinations finish; not-yet-started ones are discarded.
func (s *Sweeper) Run(ctx context.Context, f *feed.Feed, strategyName string, grid Grid, cfg SweepConfig) (*Report, error) {
	if _, err := s.registry.New(strategyName); err != nil {
		return nil, err
	}
	if err := cfg.Run.Validate(); err != nil {
		return nil, err
	}

	combos := grid.Combinations()
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(combos) {
		workers = len(combos)
	}
	sortBy := cfg.SortBy
	if sortBy == "" {
		sortBy = MetricTotalReturn
	}

	s.logger.WithFields(logrus.Fields{
		"strategy":     strategyName,
		"combinations": len(combos),
		"workers":      workers,
	}).Info("Starting parameter sweep")
	started := time.Now()

	jobs := make(chan int)
	rows := make([]*Row, len(combos))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rows[idx] = s.runOne(ctx, f, strategyName, combos[idx], cfg.Run)
			}
		}()
	}

feedLoop:
	for idx := range combos {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feedLoop
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	report := &Report{Strategy: strategyName, SortBy: sortBy}
	for _, row := range rows {
		if row != nil {
			report.Rows = append(report.Rows, *row)
		}
	}
	sortRows(report.Rows, sortBy)

	metrics.RecordSweep(time.Since(started).Seconds())
	s.logger.WithFields(logrus.Fields{
		"rows":     len(report.Rows),
		"failed":   countFailed(report.Rows),
		"duration": time.Since(started),
	}).Info("Sweep finished")

	return report, nil
}

func (s *Sweeper) runOne(ctx context.Context, f *feed.Feed, strategyName string, params map[string]any, cfg RunConfig) *Row {
	strat, err := s.registry.New(strategyName)
	if err != nil {
		return &Row{Params: params, Err: err.Error()}
	}

	started := time.Now()
	result, err := NewEngine(s.logger).Run(ctx, f, strat, params, cfg)
	metrics.RecordRunDuration(time.Since(started).Seconds())
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"params": fmt.Sprintf("%v", params),
			"error":  err,
		}).Warn("Sweep combination failed")
		return &Row{Params: params, Err: err.Error()}
	}
	return &Row{Params: params, Result: result}
}

// sortRows orders successful rows by the metric descending; failed rows sink
// to the bottom in their original order.
func sortRows(rows []Row, sortBy Metric) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Failed() != rows[j].Failed() {
			return !rows[i].Failed()
		}
		if rows[i].Failed() {
			return false
		}
		return sortBy.Value(rows[i].Result.Metrics) > sortBy.Value(rows[j].Result.Metrics)
	})
}

func countFailed(rows []Row) int {
	n := 0
	for _, row := range rows {
		if row.Failed() {
			n++
		}
	}
	return n
}
