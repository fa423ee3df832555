package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/marketdata"
	"github.com/yourusername/stockpilot/internal/pool"
	"github.com/yourusername/stockpilot/internal/risk"
)

func newPoolCmd() *cobra.Command {
	var poolName string

	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage the picking, watching and trading stock pools",
	}
	cmd.PersistentFlags().StringVar(&poolName, "pool", "picking", "Pool to operate on (picking, watching, trading)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pool entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			entries, err := store.Load(pool.Type(poolName))
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("Pool %q is empty.\n", poolName)
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%-10s %-20s", e.Code, e.Name)
				if !e.LastClose.IsZero() {
					line += fmt.Sprintf(" close=%s", e.LastClose)
				}
				if len(e.Tags) > 0 {
					line += " [" + strings.Join(e.Tags, ",") + "]"
				}
				if e.Note.Content != "" {
					line += " " + e.Note.Content
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add CODE NAME",
		Short: "Add a symbol to a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Add(pool.Type(poolName), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Added %s (%s) to %s pool.\n", args[1], args[0], poolName)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove CODE",
		Short: "Remove a symbol from a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Remove(pool.Type(poolName), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s from %s pool.\n", args[0], poolName)
			return nil
		},
	}

	var moveTo string
	moveCmd := &cobra.Command{
		Use:   "move CODE",
		Short: "Move a symbol to another pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Move(args[0], pool.Type(poolName), pool.Type(moveTo)); err != nil {
				return err
			}
			fmt.Printf("Moved %s from %s to %s.\n", args[0], poolName, moveTo)
			return nil
		},
	}
	moveCmd.Flags().StringVar(&moveTo, "to", "watching", "Destination pool")

	noteCmd := &cobra.Command{
		Use:   "note CODE TEXT",
		Short: "Set the note for a symbol",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			return store.UpdateNote(pool.Type(poolName), args[0], strings.Join(args[1:], " "))
		},
	}

	tagCmd := &cobra.Command{
		Use:   "tag CODE TAG...",
		Short: "Replace the tags for a symbol",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			return store.UpdateTags(pool.Type(poolName), args[0], args[1:])
		},
	}

	planFlags := &riskFlags{}
	planCmd := &cobra.Command{
		Use:   "plan CODE",
		Short: "Set the trade plan for a trading-pool symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := buildSetup(planFlags)
			if err != nil {
				return err
			}
			if err := risk.ValidateSetup(setup); err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			plan := pool.TradePlan{
				BuyPrice:   setup.EntryPrice,
				Shares:     setup.Quantity,
				StopLoss:   setup.StopLoss,
				TakeProfit: setup.TakeProfit,
			}
			if err := store.SetPlan(pool.Type(poolName), args[0], plan); err != nil {
				return err
			}

			report, err := risk.Calculate(setup)
			if err != nil {
				return err
			}
			printRiskReport(report)
			return nil
		},
	}
	planCmd.Flags().StringVar(&planFlags.entry, "entry", "", "Planned buy price")
	planCmd.Flags().StringVar(&planFlags.stop, "stop", "0", "Stop-loss price")
	planCmd.Flags().StringVar(&planFlags.target, "target", "0", "Take-profit price")
	planCmd.Flags().Int64VarP(&planFlags.quantity, "quantity", "q", 100, "Number of shares")
	_ = planCmd.MarkFlagRequired("entry")

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh last closes for every pooled symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			source := marketdata.NewFromConfig(&cfg.MarketData, appLogger)
			refresher := pool.NewRefresher(store, source, appLogger)
			return refresher.RefreshAll(cmd.Context())
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd, moveCmd, noteCmd, tagCmd, planCmd, refreshCmd)
	return cmd
}

func openStore() (*pool.Store, error) {
	return pool.NewStore(cfg.Pools.Dir, appLogger)
}
