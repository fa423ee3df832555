package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/stockpilot/internal/backtest"
	"github.com/yourusername/stockpilot/internal/models"
)

// RecordFromResult converts an engine result into a persistable run record
func RecordFromResult(result *backtest.Result, cfg backtest.RunConfig, symbol string) (*models.RunRecord, error) {
	params, err := json.Marshal(result.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}

	curve, err := json.Marshal(result.EquityCurve)
	if err != nil {
		return nil, fmt.Errorf("failed to encode equity curve: %w", err)
	}

	now := time.Now().UTC()
	return &models.RunRecord{
		ID:             result.RunID,
		StrategyName:   result.Strategy,
		Symbol:         symbol,
		RunDate:        now,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
		StartCash:      result.StartCash,
		FinalEquity:    result.Metrics.FinalEquity,
		TotalReturnPct: result.Metrics.TotalReturnPct,
		SharpeRatio:    result.Metrics.SharpeRatio,
		MaxDrawdownPct: result.Metrics.MaxDrawdownPct,
		TradeCount:     result.Metrics.TradeCount,
		WinRate:        result.Metrics.WinRate,
		ProfitFactor:   result.Metrics.ProfitFactor,
		Params:         params,
		EquityCurve:    curve,
		CreatedAt:      now,
	}, nil
}
