// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/config"
	applog "github.com/yourusername/stockpilot/internal/logger"
	"github.com/yourusername/stockpilot/internal/metrics"
	"github.com/yourusername/stockpilot/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config
	registry   = strategy.DefaultRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest trading strategies over historical bar data",
	Long: `Runs moving average and pattern strategies against historical OHLCV data,
simulates fills with commission, and reports equity, drawdown and trade metrics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = applog.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backtest %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available strategies and their parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range registry.List() {
			specs, err := registry.Specs(name)
			if err != nil {
				return err
			}
			fmt.Println(name)
			for _, spec := range specs {
				fmt.Printf("  %-12s %-6s default=%v min=%v max=%v\n",
					spec.Name, spec.Type, spec.Default, spec.Min, spec.Max)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newPoolCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRiskCmd())
	rootCmd.AddCommand(newRunsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	cfg = &config.Config{}

	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	// Config files are optional for offline CSV runs, but whatever
	// loaded must be internally consistent.
	if err := config.Validate(cfg); err != nil {
		if _, statErr := os.Stat(configFile); statErr == nil {
			return err
		}
	}
	return nil
}
