package broker

import (
	"fmt"
	"time"
)

// Compile-time interface check.
var _ Account = (*Simulator)(nil)

// Simulator tracks cash, position, trade log and equity curve for one backtest
// run. It is not safe for concurrent use; each run owns a fresh instance.
type Simulator struct {
	cash           float64
	position       Position
	commissionRate float64

	entryBar      int
	trades        []TradeRecord
	equity        []EquityPoint
	lastRejection error
}

// NewSimulator creates a Simulator with the given starting cash and flat
// percentage commission rate applied to the notional of every fill.
func NewSimulator(startCash, commissionRate float64) *Simulator {
	return &Simulator{
		cash:           startCash,
		commissionRate: commissionRate,
	}
}

// Cash returns available cash.
func (s *Simulator) Cash() float64 {
	return s.cash
}

// Position returns the current holding.
func (s *Simulator) Position() Position {
	return s.position
}

// LastRejection returns the most recent order rejection, if any.
func (s *Simulator) LastRejection() error {
	return s.lastRejection
}

// Trades returns the completed trade log.
func (s *Simulator) Trades() []TradeRecord {
	return s.trades
}

// EquityCurve returns the per-bar equity history.
func (s *Simulator) EquityCurve() []EquityPoint {
	return s.equity
}

// Submit validates and executes an order at the given close price. Rejected
// orders leave cash and position untouched and are visible to the strategy
// through LastRejection.
func (s *Simulator) Submit(order Order, price float64) (Fill, error) {
	if order.Size <= 0 {
		s.lastRejection = ErrInvalidOrder
		return Fill{}, fmt.Errorf("%w: got %d", ErrInvalidOrder, order.Size)
	}

	switch order.Side {
	case Buy:
		return s.fillBuy(order, price)
	case Sell:
		return s.fillSell(order, price)
	}
	return Fill{}, fmt.Errorf("unknown order side %d", order.Side)
}

func (s *Simulator) fillBuy(order Order, price float64) (Fill, error) {
	notional := price * float64(order.Size)
	commission := notional * s.commissionRate
	if s.cash < notional+commission {
		s.lastRejection = ErrInsufficientFunds
		return Fill{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, notional+commission, s.cash)
	}

	s.cash -= notional + commission
	if s.position.Size == 0 {
		s.entryBar = order.BarIndex
		s.position.AvgCost = price
	} else {
		held := s.position.AvgCost * float64(s.position.Size)
		s.position.AvgCost = (held + notional) / float64(s.position.Size+order.Size)
	}
	s.position.Size += order.Size
	s.lastRejection = nil

	return Fill{Side: Buy, Size: order.Size, Price: price, Commission: commission, BarIndex: order.BarIndex}, nil
}

func (s *Simulator) fillSell(order Order, price float64) (Fill, error) {
	if s.position.Size < order.Size {
		s.lastRejection = ErrInsufficientPosition
		return Fill{}, fmt.Errorf("%w: have %d, want to sell %d", ErrInsufficientPosition, s.position.Size, order.Size)
	}

	notional := price * float64(order.Size)
	commission := notional * s.commissionRate
	s.cash += notional - commission

	pnl := (price-s.position.AvgCost)*float64(order.Size) - commission
	costBasis := s.position.AvgCost * float64(order.Size)
	pnlPct := 0.0
	if costBasis > 0 {
		pnlPct = pnl / costBasis
	}
	s.trades = append(s.trades, TradeRecord{
		EntryBar:   s.entryBar,
		ExitBar:    order.BarIndex,
		EntryPrice: s.position.AvgCost,
		ExitPrice:  price,
		Size:       order.Size,
		PnL:        pnl,
		PnLPct:     pnlPct,
	})

	s.position.Size -= order.Size
	if s.position.Size == 0 {
		s.position.AvgCost = 0
	}
	s.lastRejection = nil

	return Fill{Side: Sell, Size: order.Size, Price: price, Commission: commission, BarIndex: order.BarIndex}, nil
}

// CloseAll liquidates the whole position at the given price. It is a no-op
// when flat.
func (s *Simulator) CloseAll(barIndex int, price float64) (Fill, error) {
	if s.position.Size == 0 {
		return Fill{}, nil
	}
	return s.fillSell(Order{Side: Sell, Size: s.position.Size, BarIndex: barIndex}, price)
}

// MarkToMarket appends one equity sample: cash plus position valued at the
// bar's close. Called exactly once per bar, after decision processing.
func (s *Simulator) MarkToMarket(ts time.Time, close float64) {
	s.equity = append(s.equity, EquityPoint{
		Time:   ts,
		Equity: s.cash + float64(s.position.Size)*close,
	})
}
