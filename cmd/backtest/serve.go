package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/stockpilot/internal/database"
	"github.com/yourusername/stockpilot/internal/health"
	"github.com/yourusername/stockpilot/internal/marketdata"
	"github.com/yourusername/stockpilot/internal/metrics"
	"github.com/yourusername/stockpilot/internal/pool"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pool refresher daemon with health and metrics endpoints",
		Long: `Starts the scheduled pool price refresher and serves /health, /ready,
/live and the metrics endpoint until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore()
			if err != nil {
				return err
			}

			source := marketdata.NewFromConfig(&cfg.MarketData, appLogger)
			refresher := pool.NewRefresher(store, source, appLogger)
			if err := refresher.Schedule(cfg.Pools.RefreshSchedule); err != nil {
				return err
			}

			healthCfg := health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Commit:      GitCommit,
				Port:        strconv.Itoa(cfg.Metrics.Port),
				Logger:      appLogger,
			}
			if cfg.Metrics.Enabled {
				healthCfg.MetricsPath = cfg.Metrics.Path
				healthCfg.Metrics = metrics.Handler()
			}

			var db *database.DB
			if cfg.Database.Enabled {
				db, err = database.Initialize(ctx, cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.HealthCheck(ctx); err != nil {
					return fmt.Errorf("database health check failed: %w", err)
				}
				healthCfg.DB = db
			}

			server := health.NewServer(healthCfg)
			if err := server.Start(ctx); err != nil {
				return err
			}
			defer server.Shutdown()

			if err := refresher.Start(); err != nil {
				return err
			}
			defer refresher.Stop()
			server.SetReady(true)

			appLogger.WithField("next_run", refresher.NextRun()).Info("Pool refresher running")

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-stop:
				fmt.Printf("Received %s, shutting down.\n", sig)
			case <-ctx.Done():
			}
			return nil
		},
	}
}
