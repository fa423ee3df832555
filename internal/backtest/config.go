package backtest

import (
	"fmt"
	"time"
)

// ConfigError reports an invalid run configuration. It is raised before any
// bar is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid run config: %s: %s", e.Field, e.Reason)
}

// FillPolicy names the execution-timing policy for order fills. Only same-bar
// close fills are implemented; the field exists so a legacy-parity policy
// could be added without changing the RunConfig shape.
type FillPolicy string

// FillClose fills orders at the close of the bar the decision was made on.
const FillClose FillPolicy = "close"

// RunConfig carries the per-run settings: cash, commission, stake and
// an optional date range.
type RunConfig struct {
	StartCash      float64
	CommissionRate float64
	Stake          int
	StartDate      time.Time
	EndDate        time.Time
	RiskFreeRate   float64
	FillPolicy     FillPolicy
}

// Validate checks the configuration. All violations are fatal before the
// first bar.
func (c RunConfig) Validate() error {
	if c.StartCash < 0 {
		return &ConfigError{Field: "start_cash", Reason: fmt.Sprintf("must be >= 0, got %g", c.StartCash)}
	}
	if c.CommissionRate < 0 || c.CommissionRate > 1 {
		return &ConfigError{Field: "commission_rate", Reason: fmt.Sprintf("must be in [0, 1], got %g", c.CommissionRate)}
	}
	if c.Stake <= 0 {
		return &ConfigError{Field: "stake", Reason: fmt.Sprintf("must be > 0, got %d", c.Stake)}
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && !c.StartDate.Before(c.EndDate) {
		return &ConfigError{Field: "start_date", Reason: "must be before end date"}
	}
	if c.FillPolicy != "" && c.FillPolicy != FillClose {
		return &ConfigError{Field: "fill_policy", Reason: fmt.Sprintf("unsupported policy %q", c.FillPolicy)}
	}
	return nil
}
