package backtest

import (
	"math"
	"testing"

	"github.com/yourusername/stockpilot/internal/broker"
)

func curve(values ...float64) EquityCurve {
	points := make([]broker.EquityPoint, len(values))
	for i, v := range values {
		points[i] = broker.EquityPoint{Time: day(i), Equity: v}
	}
	return points
}

func TestMaxDrawdown(t *testing.T) {
	c := curve(100, 120, 90, 110, 80)
	// Peak 120, trough 80.
	want := (120.0 - 80.0) / 120.0
	if got := c.MaxDrawdown(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected drawdown %f, got %f", want, got)
	}
}

func TestMaxDrawdownMonotonicRiseIsZero(t *testing.T) {
	if got := curve(100, 101, 102, 103).MaxDrawdown(); got != 0 {
		t.Errorf("expected zero drawdown, got %f", got)
	}
}

func TestReturnsLength(t *testing.T) {
	if got := len(curve(100, 101, 102).Returns()); got != 2 {
		t.Errorf("expected 2 returns, got %d", got)
	}
	if got := len(curve(100).Returns()); got != 0 {
		t.Errorf("expected no returns for single point, got %d", got)
	}
}

func TestCalculateMetricsTradeStats(t *testing.T) {
	trades := []broker.TradeRecord{
		{PnL: 100}, {PnL: -50}, {PnL: 200}, {PnL: -25},
	}
	m := CalculateMetrics(1000, curve(1000, 1225), trades, 0)

	if m.TradeCount != 4 {
		t.Errorf("expected 4 trades, got %d", m.TradeCount)
	}
	if m.WinRate != 0.5 {
		t.Errorf("expected win rate 0.5, got %f", m.WinRate)
	}
	if math.Abs(m.ProfitFactor-4) > 1e-9 {
		t.Errorf("expected profit factor 4, got %f", m.ProfitFactor)
	}
	if math.Abs(m.TotalReturnPct-22.5) > 1e-9 {
		t.Errorf("expected total return 22.5%%, got %f", m.TotalReturnPct)
	}
	if math.Abs(m.AverageWin-150) > 1e-9 {
		t.Errorf("expected average win 150, got %f", m.AverageWin)
	}
	if math.Abs(m.AverageLoss-37.5) > 1e-9 {
		t.Errorf("expected average loss 37.5, got %f", m.AverageLoss)
	}
}

func TestCalculateMetricsEmptyCurve(t *testing.T) {
	m := CalculateMetrics(500, nil, nil, 0)
	if m.FinalEquity != 500 {
		t.Errorf("expected final equity to fall back to start cash, got %f", m.FinalEquity)
	}
	if m.TotalReturnPct != 0 || m.TradeCount != 0 {
		t.Errorf("expected zeroed metrics, got %+v", m)
	}
}

func TestSharpeZeroForFlatReturns(t *testing.T) {
	if got := sharpeRatio([]float64{0, 0, 0}, 0); got != 0 {
		t.Errorf("expected zero sharpe for zero-variance returns, got %f", got)
	}
}
