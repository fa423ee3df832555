package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/backtest"
	"github.com/yourusername/stockpilot/internal/database"
	"github.com/yourusername/stockpilot/internal/feed"
	applog "github.com/yourusername/stockpilot/internal/logger"
	"github.com/yourusername/stockpilot/internal/marketdata"
	"github.com/yourusername/stockpilot/internal/repository"
)

type runFlags struct {
	strategyName string
	csvPath      string
	symbol       string
	params       []string
	startCash    float64
	commission   float64
	stake        int
	startDate    string
	endDate      string
	equityOut    string
	save         bool
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single backtest",
		Long: `Runs one strategy over a bar series loaded from a CSV file or fetched
for a symbol, and prints the resulting metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.strategyName, "strategy", "s", "ma_cross", "Strategy name")
	cmd.Flags().StringVar(&flags.csvPath, "csv", "", "Path to OHLCV CSV file")
	cmd.Flags().StringVar(&flags.symbol, "symbol", "", "Symbol to fetch bars for")
	cmd.Flags().StringArrayVarP(&flags.params, "param", "p", nil, "Strategy parameter as name=value (repeatable)")
	cmd.Flags().Float64Var(&flags.startCash, "start-cash", 0, "Override starting cash")
	cmd.Flags().Float64Var(&flags.commission, "commission", -1, "Override commission rate")
	cmd.Flags().IntVar(&flags.stake, "stake", 0, "Override default stake")
	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "Override end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.equityOut, "equity-out", "", "Write the equity curve CSV to this path")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Persist the result to the configured database")

	return cmd
}

func runBacktest(ctx context.Context, flags *runFlags) error {
	runCfg, err := buildRunConfig(flags)
	if err != nil {
		return err
	}

	f, err := loadBars(ctx, flags.csvPath, flags.symbol, runCfg.StartDate, runCfg.EndDate)
	if err != nil {
		return err
	}

	strat, err := registry.New(flags.strategyName)
	if err != nil {
		return err
	}

	params, err := parseParams(flags.params)
	if err != nil {
		return err
	}

	runLogger := applog.NewRunLogger(appLogger)
	engine := backtest.NewEngine(appLogger)

	started := time.Now()
	runLogger.LogRunStarted(flags.strategyName, f.Len(), runCfg.StartCash)
	result, err := engine.Run(ctx, f, strat, params, runCfg)
	if err != nil {
		runLogger.LogRunFailed(flags.strategyName, err.Error())
		return err
	}
	runLogger.LogRunFinished(
		result.RunID.String(), result.Strategy, result.Metrics.TradeCount,
		result.Metrics.FinalEquity, result.Metrics.TotalReturnPct, result.Metrics.MaxDrawdownPct,
		float64(time.Since(started).Milliseconds()),
	)
	if cfg.Backtest.DrawdownAlertPercent > 0 && result.Metrics.MaxDrawdownPct > cfg.Backtest.DrawdownAlertPercent {
		runLogger.LogDrawdownBreach(result.RunID.String(), result.Strategy,
			result.Metrics.MaxDrawdownPct, cfg.Backtest.DrawdownAlertPercent)
	}

	printResult(result)

	if flags.equityOut != "" {
		if err := writeEquityCurve(flags.equityOut, result); err != nil {
			return err
		}
		fmt.Printf("Equity curve written to %s\n", flags.equityOut)
	}

	if flags.save {
		if err := persistResult(ctx, result, runCfg, flags.symbol); err != nil {
			return err
		}
		fmt.Println("Result saved.")
	}

	return nil
}

func buildRunConfig(flags *runFlags) (backtest.RunConfig, error) {
	runCfg := backtest.RunConfig{
		StartCash:      cfg.Backtest.StartCash,
		CommissionRate: cfg.Backtest.CommissionRate,
		Stake:          cfg.Backtest.Stake,
		RiskFreeRate:   cfg.Backtest.RiskFreeRate,
		FillPolicy:     backtest.FillClose,
	}

	if flags.startCash > 0 {
		runCfg.StartCash = flags.startCash
	}
	if flags.commission >= 0 {
		runCfg.CommissionRate = flags.commission
	}
	if flags.stake > 0 {
		runCfg.Stake = flags.stake
	}

	startStr := cfg.Backtest.StartDate
	if flags.startDate != "" {
		startStr = flags.startDate
	}
	endStr := cfg.Backtest.EndDate
	if flags.endDate != "" {
		endStr = flags.endDate
	}

	var err error
	if startStr != "" {
		if runCfg.StartDate, err = time.Parse("2006-01-02", startStr); err != nil {
			return runCfg, fmt.Errorf("bad start date %q: %w", startStr, err)
		}
	}
	if endStr != "" {
		if runCfg.EndDate, err = time.Parse("2006-01-02", endStr); err != nil {
			return runCfg, fmt.Errorf("bad end date %q: %w", endStr, err)
		}
	}

	return runCfg, nil
}

func loadBars(ctx context.Context, csvPath, symbol string, start, end time.Time) (*feed.Feed, error) {
	switch {
	case csvPath != "":
		file, err := os.Open(csvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bar file: %w", err)
		}
		defer file.Close()
		return feed.FromCSV(file)

	case symbol != "":
		if start.IsZero() || end.IsZero() {
			return nil, fmt.Errorf("start and end dates are required when fetching by symbol")
		}
		source := marketdata.NewFromConfig(&cfg.MarketData, appLogger)
		bars, err := source.FetchBars(ctx, symbol, start, end)
		if err != nil {
			return nil, err
		}
		return feed.NewFeed(bars)

	default:
		return nil, fmt.Errorf("either --csv or --symbol is required")
	}
}

// parseParams converts name=value pairs, preferring int then float then string
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("bad parameter %q, want name=value", pair)
		}
		params[name] = parseParamValue(value)
	}
	return params, nil
}

func parseParamValue(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func printResult(result *backtest.Result) {
	m := result.Metrics
	fmt.Printf("\nStrategy:      %s\n", result.Strategy)
	fmt.Printf("Run ID:        %s\n", result.RunID)
	fmt.Printf("Start cash:    %.2f\n", result.StartCash)
	fmt.Printf("Final equity:  %.2f\n", m.FinalEquity)
	fmt.Printf("Total return:  %.2f%%\n", m.TotalReturnPct)
	fmt.Printf("Max drawdown:  %.2f%%\n", m.MaxDrawdownPct)
	fmt.Printf("Sharpe ratio:  %.3f\n", m.SharpeRatio)
	fmt.Printf("Trades:        %d\n", m.TradeCount)
	if m.TradeCount > 0 {
		fmt.Printf("Win rate:      %.1f%%\n", m.WinRate*100)
		fmt.Printf("Profit factor: %.2f\n", m.ProfitFactor)
		fmt.Printf("Average win:   %.2f\n", m.AverageWin)
		fmt.Printf("Average loss:  %.2f\n", m.AverageLoss)
	}
}

func writeEquityCurve(path string, result *backtest.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	return os.WriteFile(path, []byte(result.EquityCurve.ToCSV()), 0o644)
}

func persistResult(ctx context.Context, result *backtest.Result, runCfg backtest.RunConfig, symbol string) error {
	if !cfg.Database.Enabled {
		return fmt.Errorf("database is not enabled in configuration")
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	record, err := repository.RecordFromResult(result, runCfg, symbol)
	if err != nil {
		return err
	}
	return repos.Runs.Save(ctx, record)
}
