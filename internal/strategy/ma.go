package strategy

import (
	"errors"

	"github.com/yourusername/stockpilot/internal/feed"
)

// SingleMA is a trend-following strategy on one rolling mean: buy when the
// close crosses above its N-period mean, close the position when it crosses
// back below.
type SingleMA struct {
	window int

	prevDiff float64
}

// NewSingleMA creates a SingleMA with the default window.
func NewSingleMA() *SingleMA {
	return &SingleMA{window: 20}
}

func (s *SingleMA) Name() string {
	return "ma"
}

func (s *SingleMA) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "window", Type: ParamInt, Default: 20, Min: 2, Max: 500},
	}
}

func (s *SingleMA) Reset(params map[string]any) error {
	specs := s.Params()
	if err := rejectUnknown(s.Name(), params, specs); err != nil {
		return err
	}
	window, err := intParam(s.Name(), params, specs[0])
	if err != nil {
		return err
	}

	s.window = window
	s.prevDiff = 0
	return nil
}

func (s *SingleMA) OnBar(ctx Context) (Decision, error) {
	bars, err := ctx.Feed.Lookback(ctx.Index, s.window)
	if errors.Is(err, feed.ErrInsufficientHistory) {
		return HoldDecision, nil
	}
	if err != nil {
		return HoldDecision, err
	}

	diff := ctx.Bar().Close - meanClose(bars)
	crossedUp := s.prevDiff <= 0 && diff > 0
	crossedDown := s.prevDiff >= 0 && diff < 0
	s.prevDiff = diff

	pos := ctx.Account.Position()
	if crossedUp && pos.Size == 0 {
		return Decision{Action: Buy}, nil
	}
	if crossedDown && pos.Size > 0 {
		return Decision{Action: Close}, nil
	}
	return HoldDecision, nil
}
