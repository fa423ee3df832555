// Package risk calculates risk/reward metrics for long trade setups.
package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidEntry    = errors.New("entry price must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// Setup describes a planned long trade
type Setup struct {
	EntryPrice decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
	Quantity   int64
}

// Report holds the calculated risk/reward metrics for a setup
type Report struct {
	PositionValue  decimal.Decimal `json:"position_value"`
	RiskPerShare   decimal.Decimal `json:"risk_per_share"`
	TotalRisk      decimal.Decimal `json:"total_risk"`
	RiskPct        decimal.Decimal `json:"risk_pct"`
	RewardPerShare decimal.Decimal `json:"reward_per_share"`
	TotalReward    decimal.Decimal `json:"total_reward"`
	RewardPct      decimal.Decimal `json:"reward_pct"`
	RewardRisk     decimal.Decimal `json:"rr_ratio"`
	Warnings       []string        `json:"warnings,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// Calculate produces the risk/reward metrics for a trade setup
func Calculate(setup Setup) (*Report, error) {
	if setup.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidEntry
	}
	if setup.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	qty := decimal.NewFromInt(setup.Quantity)

	report := &Report{
		PositionValue: setup.EntryPrice.Mul(qty),
	}

	report.RiskPerShare = setup.EntryPrice.Sub(setup.StopLoss)
	report.TotalRisk = report.RiskPerShare.Mul(qty)
	report.RiskPct = report.RiskPerShare.Div(setup.EntryPrice).Mul(hundred)

	report.RewardPerShare = setup.TakeProfit.Sub(setup.EntryPrice)
	report.TotalReward = report.RewardPerShare.Mul(qty)
	report.RewardPct = report.RewardPerShare.Div(setup.EntryPrice).Mul(hundred)

	if report.RiskPerShare.GreaterThan(decimal.Zero) {
		report.RewardRisk = report.RewardPerShare.Div(report.RiskPerShare)
	}

	if setup.StopLoss.GreaterThanOrEqual(setup.EntryPrice) {
		report.Warnings = append(report.Warnings, "stop loss must be below entry price")
	}
	if setup.TakeProfit.LessThanOrEqual(setup.EntryPrice) {
		report.Warnings = append(report.Warnings, "take profit must be above entry price")
	}

	return report, nil
}

// ValidateSetup checks whether the long setup levels are ordered sensibly.
// Zero stop loss and take profit mean the level is unset and pass validation.
func ValidateSetup(setup Setup) error {
	if setup.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntry
	}
	if setup.StopLoss.GreaterThan(decimal.Zero) && setup.StopLoss.GreaterThanOrEqual(setup.EntryPrice) {
		return errors.New("stop loss must be below entry price")
	}
	if setup.TakeProfit.GreaterThan(decimal.Zero) && setup.TakeProfit.LessThanOrEqual(setup.EntryPrice) {
		return errors.New("take profit must be above entry price")
	}
	return nil
}
