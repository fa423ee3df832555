// Package backtest drives bar-by-bar strategy simulation and aggregates the
// results of parameter sweeps.
package backtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/broker"
	"github.com/yourusername/stockpilot/internal/feed"
	"github.com/yourusername/stockpilot/internal/metrics"
	"github.com/yourusername/stockpilot/internal/strategy"
)

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Engine replays a bar feed through a strategy against a simulated broker.
// One Engine handles one run at a time; the sweep creates an Engine per
// combination so runs stay fully isolated.
type Engine struct {
	logger *logrus.Logger
	state  State
}

// NewEngine creates an Engine.
func NewEngine(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{logger: logger, state: Idle}
}

// State returns the engine lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Run executes one backtest: per bar, strategy decision, order execution at
// the same bar's close, then mark-to-market. Any open position is liquidated
// at the final close so the result is fully realized. The output is
// deterministic for identical inputs.
func (e *Engine) Run(ctx context.Context, f *feed.Feed, strat strategy.Strategy, params map[string]any, cfg RunConfig) (*Result, error) {
	e.state = Running
	result, err := e.run(ctx, f, strat, params, cfg)
	if err != nil {
		e.state = Failed
		metrics.RecordRun(stratName(strat), "failure")
		return nil, err
	}
	e.state = Finished
	metrics.RecordRun(stratName(strat), "success")
	return result, nil
}

func (e *Engine) run(ctx context.Context, f *feed.Feed, strat strategy.Strategy, params map[string]any, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &feed.DataError{Index: 0, Reason: "nil feed"}
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() {
		restricted, err := f.Between(cfg.StartDate, cfg.EndDate)
		if err != nil {
			return nil, err
		}
		f = restricted
	}

	if err := strat.Reset(params); err != nil {
		return nil, err
	}

	sim := broker.NewSimulator(cfg.StartCash, cfg.CommissionRate)
	last := f.Len() - 1

	e.logger.WithFields(logrus.Fields{
		"strategy": strat.Name(),
		"bars":     f.Len(),
		"cash":     cfg.StartCash,
	}).Debug("Starting backtest run")

	for i := 0; i <= last; i++ {
		bar := f.At(i)

		decision, err := strat.OnBar(strategy.Context{Index: i, Feed: f, Account: sim})
		if err != nil {
			return nil, fmt.Errorf("strategy %s failed at bar %d: %w", strat.Name(), i, err)
		}

		// A buy on the final bar would be liquidated at the same close,
		// producing a trade whose exit bar equals its entry bar. Every
		// trade must exit after it entered, so final-bar entries hold.
		if i == last && decision.Action == strategy.Buy {
			decision = strategy.HoldDecision
		}

		if err := e.execute(sim, decision, i, bar, cfg); err != nil {
			return nil, err
		}

		// Forced liquidation on the last bar, before the final mark, so the
		// closing equity sample is the realized cash value.
		if i == last {
			if _, err := sim.CloseAll(i, bar.Close); err != nil {
				return nil, fmt.Errorf("final liquidation failed: %w", err)
			}
		}

		sim.MarkToMarket(bar.Timestamp, bar.Close)
	}

	return newResult(strat.Name(), params, cfg, sim), nil
}

// execute translates a decision into a broker order. Order rejections are not
// run failures: the rejection stays visible to the strategy through its
// account view and the loop continues.
func (e *Engine) execute(sim *broker.Simulator, decision strategy.Decision, barIndex int, bar feed.Bar, cfg RunConfig) error {
	var order broker.Order
	switch decision.Action {
	case strategy.Hold:
		return nil
	case strategy.Buy:
		order = broker.Order{Side: broker.Buy, Size: decision.Size, BarIndex: barIndex}
	case strategy.Sell:
		order = broker.Order{Side: broker.Sell, Size: decision.Size, BarIndex: barIndex}
	case strategy.Close:
		_, err := sim.CloseAll(barIndex, bar.Close)
		return err
	default:
		return fmt.Errorf("unknown decision action %d", decision.Action)
	}

	if order.Size == 0 {
		order.Size = cfg.Stake
	}

	if _, err := sim.Submit(order, bar.Close); err != nil {
		if errors.Is(err, broker.ErrInsufficientFunds) || errors.Is(err, broker.ErrInsufficientPosition) {
			e.logger.WithFields(logrus.Fields{
				"bar":  barIndex,
				"side": order.Side.String(),
				"size": order.Size,
			}).Debug("Order rejected")
			return nil
		}
		return err
	}
	return nil
}

func stratName(strat strategy.Strategy) string {
	if strat == nil {
		return "unknown"
	}
	return strat.Name()
}
