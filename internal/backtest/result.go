package backtest

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/stockpilot/internal/broker"
)

// Result is the complete outcome of one backtest run.
type Result struct {
	RunID       uuid.UUID            `json:"run_id"`
	Strategy    string               `json:"strategy"`
	Params      map[string]any       `json:"params"`
	StartCash   float64              `json:"start_cash"`
	Metrics     Metrics              `json:"metrics"`
	Trades      []broker.TradeRecord `json:"trades"`
	EquityCurve EquityCurve          `json:"equity_curve"`
}

func newResult(strategyName string, params map[string]any, cfg RunConfig, sim *broker.Simulator) *Result {
	equity := EquityCurve(sim.EquityCurve())
	return &Result{
		RunID:       runID(strategyName, params, cfg),
		Strategy:    strategyName,
		Params:      copyParams(params),
		StartCash:   cfg.StartCash,
		Metrics:     CalculateMetrics(cfg.StartCash, equity, sim.Trades(), cfg.RiskFreeRate),
		Trades:      sim.Trades(),
		EquityCurve: equity,
	}
}

// runID derives a stable identifier from the run inputs, so identical runs
// share an ID. json.Marshal orders map keys, which keeps the hash stable.
func runID(strategyName string, params map[string]any, cfg RunConfig) uuid.UUID {
	encoded, _ := json.Marshal(params)
	seed := fmt.Sprintf("%s|%s|%g|%g|%d", strategyName, encoded, cfg.StartCash, cfg.CommissionRate, cfg.Stake)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

func copyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
