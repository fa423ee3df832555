package database

import (
	"context"
	"fmt"

	"github.com/yourusername/stockpilot/internal/config"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id               UUID PRIMARY KEY,
	strategy_name    TEXT NOT NULL,
	symbol           TEXT NOT NULL DEFAULT '',
	run_date         TIMESTAMPTZ NOT NULL,
	start_date       TIMESTAMPTZ NOT NULL,
	end_date         TIMESTAMPTZ NOT NULL,
	start_cash       DOUBLE PRECISION NOT NULL,
	final_equity     DOUBLE PRECISION NOT NULL,
	total_return_pct DOUBLE PRECISION NOT NULL,
	sharpe_ratio     DOUBLE PRECISION NOT NULL,
	max_drawdown_pct DOUBLE PRECISION NOT NULL,
	trade_count      INTEGER NOT NULL,
	win_rate         DOUBLE PRECISION NOT NULL,
	profit_factor    DOUBLE PRECISION NOT NULL,
	params           JSONB NOT NULL DEFAULT '{}',
	equity_curve     JSONB NOT NULL DEFAULT '[]',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_backtest_runs_strategy ON backtest_runs (strategy_name, run_date DESC);
`

// Initialize creates a database connection pool and ensures the run schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Ensure the backtest_runs table exists
	if _, err := db.pool.Exec(ctx, createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
