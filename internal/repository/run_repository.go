package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/stockpilot/internal/database"
	"github.com/yourusername/stockpilot/internal/models"
)

const runColumns = `
	id, strategy_name, symbol, run_date, start_date, end_date,
	start_cash, final_equity, total_return_pct, sharpe_ratio, max_drawdown_pct,
	trade_count, win_rate, profit_factor, params, equity_curve, created_at
`

const errScanRunRecord = "failed to scan run record: %w"

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Save inserts a backtest run record
func (r *PostgresRunRepository) Save(ctx context.Context, record *models.RunRecord) error {
	query := `
		INSERT INTO backtest_runs (
			id, strategy_name, symbol, run_date, start_date, end_date,
			start_cash, final_equity, total_return_pct, sharpe_ratio, max_drawdown_pct,
			trade_count, win_rate, profit_factor, params, equity_curve, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			run_date = EXCLUDED.run_date,
			final_equity = EXCLUDED.final_equity,
			total_return_pct = EXCLUDED.total_return_pct,
			sharpe_ratio = EXCLUDED.sharpe_ratio,
			max_drawdown_pct = EXCLUDED.max_drawdown_pct,
			trade_count = EXCLUDED.trade_count,
			win_rate = EXCLUDED.win_rate,
			profit_factor = EXCLUDED.profit_factor,
			equity_curve = EXCLUDED.equity_curve
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.StrategyName, record.Symbol, record.RunDate, record.StartDate, record.EndDate,
		record.StartCash, record.FinalEquity, record.TotalReturnPct, record.SharpeRatio, record.MaxDrawdownPct,
		record.TradeCount, record.WinRate, record.ProfitFactor, record.Params, record.EquityCurve, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// GetByID retrieves a single run record
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE id = $1`

	record := &models.RunRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&record.ID, &record.StrategyName, &record.Symbol, &record.RunDate, &record.StartDate, &record.EndDate,
		&record.StartCash, &record.FinalEquity, &record.TotalReturnPct, &record.SharpeRatio, &record.MaxDrawdownPct,
		&record.TradeCount, &record.WinRate, &record.ProfitFactor, &record.Params, &record.EquityCurve, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanRunRecord, err)
	}
	return record, nil
}

// GetByStrategy retrieves recent run records for a strategy
func (r *PostgresRunRepository) GetByStrategy(ctx context.Context, strategyName string, limit int) ([]*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE strategy_name = $1 ORDER BY run_date DESC LIMIT $2`
	return r.queryRecords(ctx, query, strategyName, limit)
}

// GetLatest retrieves the most recent run records
func (r *PostgresRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs ORDER BY run_date DESC LIMIT $1`
	return r.queryRecords(ctx, query, limit)
}

// GetByDateRange retrieves run records within a date range
func (r *PostgresRunRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE run_date >= $1 AND run_date <= $2 ORDER BY run_date DESC`
	return r.queryRecords(ctx, query, start, end)
}

// GetTopByReturn retrieves the best run records ranked by total return
func (r *PostgresRunRepository) GetTopByReturn(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs ORDER BY total_return_pct DESC LIMIT $1`
	return r.queryRecords(ctx, query, limit)
}

// Delete removes a run record
func (r *PostgresRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM backtest_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostgresRunRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.RunRecord, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run records: %w", err)
	}
	defer rows.Close()

	var records []*models.RunRecord
	for rows.Next() {
		record := &models.RunRecord{}
		if err := rows.Scan(
			&record.ID, &record.StrategyName, &record.Symbol, &record.RunDate, &record.StartDate, &record.EndDate,
			&record.StartCash, &record.FinalEquity, &record.TotalReturnPct, &record.SharpeRatio, &record.MaxDrawdownPct,
			&record.TradeCount, &record.WinRate, &record.ProfitFactor, &record.Params, &record.EquityCurve, &record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRunRecord, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
