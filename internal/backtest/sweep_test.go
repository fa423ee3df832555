package backtest

import (
	"context"
	"strings"
	"testing"

	"github.com/yourusername/stockpilot/internal/strategy"
)

func TestGridCombinations(t *testing.T) {
	g := Grid{
		"fast_window": {3, 5, 8},
		"slow_window": {10, 20, 30},
	}
	combos := g.Combinations()
	if len(combos) != 9 {
		t.Fatalf("expected 9 combinations for a 3x3 grid, got %d", len(combos))
	}

	seen := map[[2]int]bool{}
	for _, combo := range combos {
		key := [2]int{combo["fast_window"].(int), combo["slow_window"].(int)}
		if seen[key] {
			t.Errorf("duplicate combination %v", combo)
		}
		seen[key] = true
	}
}

func TestGridCombinationsEmpty(t *testing.T) {
	combos := Grid{}.Combinations()
	if len(combos) != 1 || len(combos[0]) != 0 {
		t.Fatalf("expected single empty combination, got %v", combos)
	}
}

func TestSweepRunsFullGrid(t *testing.T) {
	f := risingFeed(t, 80)
	sweeper := NewSweeper(strategy.DefaultRegistry(), quietLogger())

	grid := Grid{
		"fast_window": {3, 5, 8},
		"slow_window": {15, 20, 30},
	}
	report, err := sweeper.Run(context.Background(), f, "ma_cross", grid, SweepConfig{
		Run:     defaultConfig(),
		Workers: 3,
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(report.Rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(report.Rows))
	}
	for _, row := range report.Rows {
		if row.Failed() {
			t.Errorf("unexpected failed row %v: %s", row.Params, row.Err)
		}
	}
}

func TestSweepSortsDescendingWithFailedRowsLast(t *testing.T) {
	f := risingFeed(t, 80)
	sweeper := NewSweeper(strategy.DefaultRegistry(), quietLogger())

	// fast_window 50 > slow_window in every combination, so a third of the
	// grid fails with a parameter error.
	grid := Grid{
		"fast_window": {3, 5, 50},
		"slow_window": {15, 20, 30},
	}
	report, err := sweeper.Run(context.Background(), f, "ma_cross", grid, SweepConfig{
		Run:    defaultConfig(),
		SortBy: MetricTotalReturn,
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(report.Rows) != 9 {
		t.Fatalf("expected 9 rows including failures, got %d", len(report.Rows))
	}

	failures := 0
	seenFailure := false
	var prev float64
	for i, row := range report.Rows {
		if row.Failed() {
			failures++
			seenFailure = true
			continue
		}
		if seenFailure {
			t.Fatalf("successful row after failed row at position %d", i)
		}
		value := MetricTotalReturn.Value(row.Result.Metrics)
		if i > 0 && value > prev {
			t.Errorf("rows not sorted descending at position %d", i)
		}
		prev = value
	}
	if failures != 3 {
		t.Errorf("expected 3 failed rows, got %d", failures)
	}
}

func TestSweepUnknownStrategy(t *testing.T) {
	sweeper := NewSweeper(strategy.DefaultRegistry(), quietLogger())
	_, err := sweeper.Run(context.Background(), risingFeed(t, 30), "nonexistent", Grid{}, SweepConfig{Run: defaultConfig()})
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestSweepCancellation(t *testing.T) {
	f := risingFeed(t, 40)
	sweeper := NewSweeper(strategy.DefaultRegistry(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before start: every combination is discarded

	report, err := sweeper.Run(ctx, f, "ma_cross", Grid{
		"fast_window": {3, 5},
		"slow_window": {15, 20},
	}, SweepConfig{Run: defaultConfig(), Workers: 1})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Errorf("expected no rows after pre-cancelled sweep, got %d", len(report.Rows))
	}
}

func TestConsoleReportIncludesFailedRows(t *testing.T) {
	f := risingFeed(t, 80)
	sweeper := NewSweeper(strategy.DefaultRegistry(), quietLogger())
	report, err := sweeper.Run(context.Background(), f, "ma_cross", Grid{
		"fast_window": {5, 50},
		"slow_window": {20},
	}, SweepConfig{Run: defaultConfig()})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	out := GenerateConsoleReport(report)
	if !strings.Contains(out, "fast_window") {
		t.Errorf("expected parameter column in report:\n%s", out)
	}
	if !strings.Contains(out, "fast window must be smaller than slow window") {
		t.Errorf("expected failed row error in report:\n%s", out)
	}
}

func TestCSVExport(t *testing.T) {
	f := risingFeed(t, 80)
	sweeper := NewSweeper(strategy.DefaultRegistry(), quietLogger())
	report, err := sweeper.Run(context.Background(), f, "ma_cross", Grid{
		"fast_window": {5},
		"slow_window": {20},
	}, SweepConfig{Run: defaultConfig()})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	path := t.TempDir() + "/report.csv"
	if err := GenerateCSVExport(report, path); err != nil {
		t.Fatalf("csv export: %v", err)
	}
}
