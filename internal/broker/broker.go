// Package broker simulates order execution against a cash and position
// account during a backtest. Fills happen at the same bar's close; this is a
// fixed policy so results never depend on lookahead-ambiguous pricing.
package broker

import (
	"errors"
	"time"
)

// Order rejection errors. The strategy should not have emitted an infeasible
// order, but the simulator defends regardless and the run continues.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds for buy order")
	ErrInsufficientPosition = errors.New("insufficient position for sell order")
	ErrInvalidOrder         = errors.New("order size must be positive")
)

// Side identifies the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Order is a request to trade a fixed number of shares at the current bar.
type Order struct {
	Side     Side
	Size     int
	BarIndex int
}

// Fill records the execution of an order.
type Fill struct {
	Side       Side
	Size       int
	Price      float64
	Commission float64
	BarIndex   int
}

// Position is the simulated holding. Size is never negative: the simulator
// implements long-only semantics.
type Position struct {
	Size    int
	AvgCost float64
}

// TradeRecord captures one completed round trip (or partial close). Immutable
// once appended.
type TradeRecord struct {
	EntryBar   int     `json:"entry_bar"`
	ExitBar    int     `json:"exit_bar"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Size       int     `json:"size"`
	PnL        float64 `json:"pnl"`
	PnLPct     float64 `json:"pnl_pct"`
}

// EquityPoint is one sample of total portfolio value.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// Account is the read-only view of broker state exposed to strategies.
type Account interface {
	Cash() float64
	Position() Position
	// LastRejection returns the rejection from the most recent submit, or nil.
	// Cleared by the next accepted order.
	LastRejection() error
}
