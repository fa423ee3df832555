package backtest

import (
	"math"

	"github.com/yourusername/stockpilot/internal/broker"
)

// tradingDaysPerYear is used to annualize the Sharpe ratio of daily bars.
const tradingDaysPerYear = 252

// Metrics are the performance numbers computed from one finished run.
type Metrics struct {
	FinalEquity    float64 `json:"final_equity"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	TradeCount     int     `json:"trade_count"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	AverageWin     float64 `json:"average_win"`
	AverageLoss    float64 `json:"average_loss"`
}

// CalculateMetrics derives Metrics from the equity curve and trade log of a
// finished run.
func CalculateMetrics(startCash float64, equity EquityCurve, trades []broker.TradeRecord, riskFreeRate float64) Metrics {
	m := Metrics{TradeCount: len(trades)}
	if len(equity) == 0 {
		m.FinalEquity = startCash
		return m
	}

	m.FinalEquity = equity[len(equity)-1].Equity
	if startCash > 0 {
		m.TotalReturnPct = (m.FinalEquity - startCash) / startCash * 100
	}
	m.MaxDrawdownPct = equity.MaxDrawdown() * 100
	m.SharpeRatio = sharpeRatio(equity.Returns(), riskFreeRate)

	wins, losses := 0, 0
	winSum, lossSum := 0.0, 0.0
	for _, tr := range trades {
		if tr.PnL > 0 {
			wins++
			winSum += tr.PnL
		} else if tr.PnL < 0 {
			losses++
			lossSum += math.Abs(tr.PnL)
		}
	}
	if len(trades) > 0 {
		m.WinRate = float64(wins) / float64(len(trades))
	}
	if wins > 0 {
		m.AverageWin = winSum / float64(wins)
	}
	if losses > 0 {
		m.AverageLoss = lossSum / float64(losses)
	}
	m.ProfitFactor = profitFactor(winSum, lossSum)

	return m
}

func sharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := average(returns)
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return (mean - riskFreeRate/tradingDaysPerYear) / std * math.Sqrt(tradingDaysPerYear)
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}
