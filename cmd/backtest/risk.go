package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/risk"
)

type riskFlags struct {
	entry    string
	stop     string
	target   string
	quantity int64
}

func newRiskCmd() *cobra.Command {
	flags := &riskFlags{}

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Calculate risk/reward metrics for a planned trade",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := buildSetup(flags)
			if err != nil {
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

	cmd.Flags().StringVar(&flags.entry, "entry", "", "Entry price")
	cmd.Flags().StringVar(&flags.stop, "stop", "0", "Stop-loss price")
	cmd.Flags().StringVar(&flags.target, "target", "0", "Take-profit price")
	cmd.Flags().Int64VarP(&flags.quantity, "quantity", "q", 100, "Number of shares")
	_ = cmd.MarkFlagRequired("entry")

	return cmd
}

func buildSetup(flags *riskFlags) (risk.Setup, error) {
	var setup risk.Setup
	var err error

	if setup.EntryPrice, err = decimal.NewFromString(flags.entry); err != nil {
		return setup, fmt.Errorf("bad entry price %q: %w", flags.entry, err)
	}
	if setup.StopLoss, err = decimal.NewFromString(flags.stop); err != nil {
		return setup, fmt.Errorf("bad stop-loss price %q: %w", flags.stop, err)
	}
	if setup.TakeProfit, err = decimal.NewFromString(flags.target); err != nil {
		return setup, fmt.Errorf("bad take-profit price %q: %w", flags.target, err)
	}
	setup.Quantity = flags.quantity
	return setup, nil
}

func printRiskReport(report *risk.Report) {
	fmt.Printf("Position value: %s\n", report.PositionValue.StringFixed(2))
	fmt.Printf("Risk/share:     %s (%s%%)\n", report.RiskPerShare.StringFixed(2), report.RiskPct.StringFixed(2))
	fmt.Printf("Total risk:     %s\n", report.TotalRisk.StringFixed(2))
	fmt.Printf("Reward/share:   %s (%s%%)\n", report.RewardPerShare.StringFixed(2), report.RewardPct.StringFixed(2))
	fmt.Printf("Total reward:   %s\n", report.TotalReward.StringFixed(2))
	if report.RewardRisk.GreaterThan(decimal.Zero) {
		fmt.Printf("Reward/risk:    %s\n", report.RewardRisk.StringFixed(2))
	}
	if len(report.Warnings) > 0 {
		fmt.Printf("Warnings:       %s\n", strings.Join(report.Warnings, "; "))
	}
}
