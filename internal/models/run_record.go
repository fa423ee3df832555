package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunRecord represents a persisted backtest run
type RunRecord struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	StrategyName   string          `db:"strategy_name" json:"strategy_name"`
	Symbol         string          `db:"symbol" json:"symbol"`
	RunDate        time.Time       `db:"run_date" json:"run_date"`
	StartDate      time.Time       `db:"start_date" json:"start_date"`
	EndDate        time.Time       `db:"end_date" json:"end_date"`
	StartCash      float64         `db:"start_cash" json:"start_cash"`
	FinalEquity    float64         `db:"final_equity" json:"final_equity"`
	TotalReturnPct float64         `db:"total_return_pct" json:"total_return_pct"`
	SharpeRatio    float64         `db:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdownPct float64         `db:"max_drawdown_pct" json:"max_drawdown_pct"`
	TradeCount     int             `db:"trade_count" json:"trade_count"`
	WinRate        float64         `db:"win_rate" json:"win_rate"`
	ProfitFactor   float64         `db:"profit_factor" json:"profit_factor"`
	Params         json.RawMessage `db:"params" json:"params"`
	EquityCurve    json.RawMessage `db:"equity_curve" json:"equity_curve"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
