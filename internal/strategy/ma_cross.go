package strategy

import (
	"errors"

	"github.com/yourusername/stockpilot/internal/feed"
)

// MACross trades the crossover of two rolling means of the close. A buy fires
// when the fast mean crosses above the slow mean, a close when it crosses
// back below. Crossing is detected by the sign of (fast−slow) flipping between
// the previous and current bar.
type MACross struct {
	fast int
	slow int

	prevDiff float64
}

// NewMACross creates an MACross with default windows.
func NewMACross() *MACross {
	return &MACross{fast: 5, slow: 20}
}

func (s *MACross) Name() string {
	return "ma_cross"
}

func (s *MACross) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "fast_window", Type: ParamInt, Default: 5, Min: 1, Max: 250},
		{Name: "slow_window", Type: ParamInt, Default: 20, Min: 2, Max: 500},
	}
}

func (s *MACross) Reset(params map[string]any) error {
	specs := s.Params()
	if err := rejectUnknown(s.Name(), params, specs); err != nil {
		return err
	}
	fast, err := intParam(s.Name(), params, specs[0])
	if err != nil {
		return err
	}
	slow, err := intParam(s.Name(), params, specs[1])
	if err != nil {
		return err
	}
	if fast >= slow {
		return &ParameterError{Strategy: s.Name(), Param: "fast_window", Reason: "fast window must be smaller than slow window"}
	}

	s.fast = fast
	s.slow = slow
	s.prevDiff = 0
	return nil
}

func (s *MACross) OnBar(ctx Context) (Decision, error) {
	slowBars, err := ctx.Feed.Lookback(ctx.Index, s.slow)
	if errors.Is(err, feed.ErrInsufficientHistory) {
		return HoldDecision, nil
	}
	if err != nil {
		return HoldDecision, err
	}
	fastBars, err := ctx.Feed.Lookback(ctx.Index, s.fast)
	if err != nil {
		return HoldDecision, err
	}

	// prevDiff is zero before the first valid bar, so a series that starts
	// with the fast mean already above the slow one counts as an upward cross.
	diff := meanClose(fastBars) - meanClose(slowBars)
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
