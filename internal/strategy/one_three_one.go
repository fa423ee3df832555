package strategy

// OneThreeOne implements the 1-3-1 red/green candlestick reversal pattern:
//  1. the candle 3 bars back is bearish, and its low is the lowest among
//     itself and the following three candles;
//  2. the three most recent candles (current included) are all bullish;
//  3. each of those closes strictly higher than the previous one.
//
// On entry the stop-loss is the low of the bearish candle and the take-profit
// is entry + (entry − stop) × tp_ratio. While in position, the stop is checked
// before the target each bar; when both trigger on the same bar the stop wins.
type OneThreeOne struct {
	tpRatio float64

	stopLoss   float64
	takeProfit float64
	armed      bool
}

// NewOneThreeOne creates a OneThreeOne with the default take-profit ratio.
func NewOneThreeOne() *OneThreeOne {
	return &OneThreeOne{tpRatio: 1.0}
}

func (s *OneThreeOne) Name() string {
	return "one_three_one"
}

func (s *OneThreeOne) Params() []ParamSpec {
	return []ParamSpec{
		{Name: "tp_ratio", Type: ParamFloat, Default: 1.0, Min: 0.1, Max: 10},
	}
}

func (s *OneThreeOne) Reset(params map[string]any) error {
	specs := s.Params()
	if err := rejectUnknown(s.Name(), params, specs); err != nil {
		return err
	}
	ratio, err := floatParam(s.Name(), params, specs[0])
	if err != nil {
		return err
	}

	s.tpRatio = ratio
	s.stopLoss = 0
	s.takeProfit = 0
	s.armed = false
	return nil
}

// StopLoss returns the active stop-loss level, valid while in position.
func (s *OneThreeOne) StopLoss() float64 {
	return s.stopLoss
}

// TakeProfit returns the active take-profit level, valid while in position.
func (s *OneThreeOne) TakeProfit() float64 {
	return s.takeProfit
}

func (s *OneThreeOne) OnBar(ctx Context) (Decision, error) {
	bar := ctx.Bar()

	if ctx.Account.Position().Size > 0 && s.armed {
		// Stop-loss first: it wins when both levels trigger on the same bar.
		if bar.Low <= s.stopLoss {
			s.disarm()
			return Decision{Action: Close}, nil
		}
		if bar.High >= s.takeProfit {
			s.disarm()
			return Decision{Action: Close}, nil
		}
		return HoldDecision, nil
	}

	// The pattern needs the current bar plus three before it.
	if ctx.Index < 3 {
		return HoldDecision, nil
	}

	back3 := ctx.Feed.At(ctx.Index - 3)
	back2 := ctx.Feed.At(ctx.Index - 2)
	back1 := ctx.Feed.At(ctx.Index - 1)

	redCandle := back3.Bearish() &&
		back3.Low < back2.Low && back3.Low < back1.Low && back3.Low < bar.Low
	greenCandles := back2.Bullish() && back1.Bullish() && bar.Bullish()
	higherCloses := bar.Close > back1.Close && back1.Close > back2.Close

	if !(redCandle && greenCandles && higherCloses) {
		return HoldDecision, nil
	}

	entry := bar.Close
	s.stopLoss = back3.Low
	s.takeProfit = entry + (entry-s.stopLoss)*s.tpRatio
	s.armed = true
	return Decision{Action: Buy}, nil
}

func (s *OneThreeOne) disarm() {
	s.stopLoss = 0
	s.takeProfit = 0
	s.armed = false
}
