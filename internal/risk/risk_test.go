package risk

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// TestCalculateBasicSetup tests a well-formed 1:2 setup
func TestCalculateBasicSetup(t *testing.T) {
	report, err := Calculate(Setup{
		EntryPrice: dec(100),
		StopLoss:   dec(95),
		TakeProfit: dec(110),
		Quantity:   200,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !report.PositionValue.Equal(dec(20000)) {
		t.Errorf("expected position value 20000, got %s", report.PositionValue)
	}
	if !report.RiskPerShare.Equal(dec(5)) {
		t.Errorf("expected risk per share 5, got %s", report.RiskPerShare)
	}
	if !report.TotalRisk.Equal(dec(1000)) {
		t.Errorf("expected total risk 1000, got %s", report.TotalRisk)
	}
	if !report.RiskPct.Equal(dec(5)) {
		t.Errorf("expected risk pct 5, got %s", report.RiskPct)
	}
	if !report.RewardPerShare.Equal(dec(10)) {
		t.Errorf("expected reward per share 10, got %s", report.RewardPerShare)
	}
	if !report.RewardRisk.Equal(dec(2)) {
		t.Errorf("expected reward/risk 2, got %s", report.RewardRisk)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", report.Warnings)
	}
}

// TestCalculateInvertedLevels tests warnings for misordered levels
func TestCalculateInvertedLevels(t *testing.T) {
	report, err := Calculate(Setup{
		EntryPrice: dec(100),
		StopLoss:   dec(105),
		TakeProfit: dec(90),
		Quantity:   100,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", report.Warnings)
	}
	// Stop above entry means risk per share is negative, no ratio
	if !report.RewardRisk.IsZero() {
		t.Errorf("expected zero reward/risk, got %s", report.RewardRisk)
	}
}

// TestCalculateRejectsBadInputs tests the input guards
func TestCalculateRejectsBadInputs(t *testing.T) {
	if _, err := Calculate(Setup{EntryPrice: dec(0), Quantity: 100}); err != ErrInvalidEntry {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
	if _, err := Calculate(Setup{EntryPrice: dec(100), Quantity: 0}); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

// TestValidateSetup tests validation of level ordering
func TestValidateSetup(t *testing.T) {
	tests := []struct {
		name  string
		setup Setup
		valid bool
	}{
		{"valid setup", Setup{EntryPrice: dec(100), StopLoss: dec(95), TakeProfit: dec(110)}, true},
		{"unset levels", Setup{EntryPrice: dec(100)}, true},
		{"stop above entry", Setup{EntryPrice: dec(100), StopLoss: dec(101)}, false},
		{"stop equals entry", Setup{EntryPrice: dec(100), StopLoss: dec(100)}, false},
		{"target below entry", Setup{EntryPrice: dec(100), TakeProfit: dec(99)}, false},
		{"zero entry", Setup{EntryPrice: dec(0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSetup(tt.setup)
			if (err == nil) != tt.valid {
				t.Errorf("expected valid=%v, got error=%v", tt.valid, err)
			}
		})
	}
}
