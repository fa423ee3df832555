// Package strategy defines the decision interface for trading strategies and
// provides a Registry for enumerating strategies and their parameter schemas.
package strategy

import (
	"fmt"

	"github.com/yourusername/stockpilot/internal/broker"
	"github.com/yourusername/stockpilot/internal/feed"
)

// Action is the kind of decision a strategy emits for one bar.
type Action int

const (
	Hold Action = iota
	Buy
	Sell
	Close
)

func (a Action) String() string {
	switch a {
	case Hold:
		return "hold"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Close:
		return "close"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Decision is the outcome of one OnBar call. Size 0 means the engine's
// configured default stake; Close always liquidates the whole position.
type Decision struct {
	Action Action
	Size   int
}

// HoldDecision is the no-op decision.
var HoldDecision = Decision{Action: Hold}

// Context gives a strategy temporal-safe inputs for one bar: the current
// index, read access to current and historical bars, and a read-only view of
// the broker account. No look-ahead is possible through it.
type Context struct {
	Index   int
	Feed    *feed.Feed
	Account broker.Account
}

// Bar returns the current bar.
func (c Context) Bar() feed.Bar {
	return c.Feed.At(c.Index)
}

// Strategy is implemented by every tradable strategy variant. OnBar is called
// once per bar in strictly increasing time order. Reset is called at run start
// with the chosen parameter values and must clear all scratch state.
type Strategy interface {
	Name() string
	Params() []ParamSpec
	Reset(params map[string]any) error
	OnBar(ctx Context) (Decision, error)
}
