package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/backtest"
)

type sweepFlags struct {
	runFlags
	grid    []string
	workers int
	sortBy  string
	csvOut  string
}

func newSweepCmd() *cobra.Command {
	flags := &sweepFlags{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter sweep",
		Long: `Runs one backtest per combination of the given parameter grid and prints
a report ranked by the chosen metric. Failed combinations are listed last.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.strategyName, "strategy", "s", "ma_cross", "Strategy name")
	cmd.Flags().StringVar(&flags.csvPath, "csv", "", "Path to OHLCV CSV file")
	cmd.Flags().StringVar(&flags.symbol, "symbol", "", "Symbol to fetch bars for")
	cmd.Flags().StringArrayVarP(&flags.grid, "grid", "g", nil, "Grid axis as name=v1,v2,v3 (repeatable)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Number of parallel workers")
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "Ranking metric")
	cmd.Flags().Float64Var(&flags.startCash, "start-cash", 0, "Override starting cash")
	cmd.Flags().Float64Var(&flags.commission, "commission", -1, "Override commission rate")
	cmd.Flags().IntVar(&flags.stake, "stake", 0, "Override default stake")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "Override end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.csvOut, "csv-out", "", "Write the full report CSV to this path")

	return cmd
}

func runSweep(ctx context.Context, flags *sweepFlags) error {
	runCfg, err := buildRunConfig(&flags.runFlags)
	if err != nil {
		return err
	}

	f, err := loadBars(ctx, flags.csvPath, flags.symbol, runCfg.StartDate, runCfg.EndDate)
	if err != nil {
		return err
	}

	grid, err := parseGrid(flags.grid)
	if err != nil {
		return err
	}

	workers := flags.workers
	if workers <= 0 {
		workers = cfg.Sweep.Workers
	}
	sortBy := flags.sortBy
	if sortBy == "" {
		sortBy = cfg.Sweep.SortBy
	}

	sweeper := backtest.NewSweeper(registry, appLogger)
	report, err := sweeper.Run(ctx, f, flags.strategyName, grid, backtest.SweepConfig{
		Run:     runCfg,
		Workers: workers,
		SortBy:  backtest.Metric(sortBy),
	})
	if err != nil {
		return err
	}

	fmt.Print(backtest.GenerateConsoleReport(report))

	if flags.csvOut != "" {
		if err := backtest.GenerateCSVExport(report, flags.csvOut); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", flags.csvOut)
	}

	return nil
}

// parseGrid converts repeated name=v1,v2,v3 axes into a sweep grid
func parseGrid(axes []string) (backtest.Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("at least one --grid axis is required")
	}

	grid := make(backtest.Grid, len(axes))
	for _, axis := range axes {
		name, list, found := strings.Cut(axis, "=")
		if !found || name == "" || list == "" {
			return nil, fmt.Errorf("bad grid axis %q, want name=v1,v2", axis)
		}

		var values []any
		for _, raw := range strings.Split(list, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			values = append(values, parseParamValue(raw))
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("grid axis %q has no values", name)
		}
		grid[name] = values
	}
	return grid, nil
}
