package strategy

import "github.com/yourusername/stockpilot/internal/feed"

func meanClose(bars []feed.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}
