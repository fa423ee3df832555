package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/database"
	"github.com/yourusername/stockpilot/internal/models"
	"github.com/yourusername/stockpilot/internal/repository"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Query persisted backtest runs",
	}

	var limit int
	var strategyName, fromDate, toDate string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuns(cmd.Context(), func(ctx context.Context, runs repository.RunRepository) error {
				var records []*models.RunRecord
				var err error
				switch {
				case fromDate != "" && toDate != "":
					var start, end time.Time
					if start, err = time.Parse("2006-01-02", fromDate); err != nil {
						return fmt.Errorf("bad from date %q: %w", fromDate, err)
					}
					if end, err = time.Parse("2006-01-02", toDate); err != nil {
						return fmt.Errorf("bad to date %q: %w", toDate, err)
					}
					records, err = runs.GetByDateRange(ctx, start, end)
				case strategyName != "":
					records, err = runs.GetByStrategy(ctx, strategyName, limit)
				default:
					records, err = runs.GetLatest(ctx, limit)
				}
				if err != nil {
					return err
				}
				printRunRecords(records)
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows")
	listCmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "Filter by strategy name")
	listCmd.Flags().StringVar(&fromDate, "from", "", "Start of run-date range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&toDate, "to", "", "End of run-date range (YYYY-MM-DD)")

	var topLimit int
	topCmd := &cobra.Command{
		Use:   "top",
		Short: "List runs ranked by total return",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuns(cmd.Context(), func(ctx context.Context, runs repository.RunRepository) error {
				records, err := runs.GetTopByReturn(ctx, topLimit)
				if err != nil {
					return err
				}
				printRunRecords(records)
				return nil
			})
		},
	}
	topCmd.Flags().IntVar(&topLimit, "limit", 10, "Maximum rows")

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad run id %q: %w", args[0], err)
			}
			return withRuns(cmd.Context(), func(ctx context.Context, runs repository.RunRepository) error {
				record, err := runs.GetByID(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("Run:           %s\n", record.ID)
				fmt.Printf("Strategy:      %s\n", record.StrategyName)
				if record.Symbol != "" {
					fmt.Printf("Symbol:        %s\n", record.Symbol)
				}
				fmt.Printf("Run date:      %s\n", record.RunDate.Format("2006-01-02 15:04"))
				fmt.Printf("Start cash:    %.2f\n", record.StartCash)
				fmt.Printf("Final equity:  %.2f\n", record.FinalEquity)
				fmt.Printf("Total return:  %.2f%%\n", record.TotalReturnPct)
				fmt.Printf("Max drawdown:  %.2f%%\n", record.MaxDrawdownPct)
				fmt.Printf("Sharpe ratio:  %.3f\n", record.SharpeRatio)
				fmt.Printf("Trades:        %d\n", record.TradeCount)
				fmt.Printf("Win rate:      %.1f%%\n", record.WinRate*100)
				fmt.Printf("Params:        %s\n", string(record.Params))
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a persisted run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad run id %q: %w", args[0], err)
			}
			return withRuns(cmd.Context(), func(ctx context.Context, runs repository.RunRepository) error {
				if err := runs.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Printf("Deleted run %s.\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, topCmd, showCmd, deleteCmd)
	return cmd
}

func withRuns(ctx context.Context, fn func(context.Context, repository.RunRepository) error) error {
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
	return fn(ctx, repos.Runs)
}

func printRunRecords(records []*models.RunRecord) {
	if len(records) == 0 {
		fmt.Println("No runs found.")
		return
	}
	fmt.Printf("%-36s  %-16s  %-10s  %10s  %9s  %7s\n",
		"ID", "STRATEGY", "DATE", "RETURN%", "MAXDD%", "TRADES")
	for _, r := range records {
		fmt.Printf("%-36s  %-16s  %-10s  %10.2f  %9.2f  %7d\n",
			r.ID, r.StrategyName, r.RunDate.Format("2006-01-02"),
			r.TotalReturnPct, r.MaxDrawdownPct, r.TradeCount)
	}
}
