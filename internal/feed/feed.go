package feed

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientHistory is returned by Lookback when fewer bars exist before
// the requested index than the lookback window requires.
var ErrInsufficientHistory = errors.New("insufficient history for lookback window")

// DataError describes a malformed input series. Feed construction fails on the
// first violation; bad data is never silently repaired.
type DataError struct {
	Index  int
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid bar data at index %d: %s", e.Index, e.Reason)
}

// Feed wraps a historical bar series with indexed access. It is immutable
// after construction and safe for concurrent readers.
type Feed struct {
	bars []Bar
}

// NewFeed validates the supplied series and builds a Feed. Timestamps must be
// strictly increasing and each bar's OHLC range must be internally consistent.
func NewFeed(bars []Bar) (*Feed, error) {
	if len(bars) == 0 {
		return nil, &DataError{Index: 0, Reason: "empty series"}
	}

	var prev time.Time
	for i, bar := range bars {
		if i > 0 && !bar.Timestamp.After(prev) {
			return nil, &DataError{Index: i, Reason: fmt.Sprintf("timestamp %s not after previous %s", bar.Timestamp.Format("2006-01-02"), prev.Format("2006-01-02"))}
		}
		if bar.High < bar.Low {
			return nil, &DataError{Index: i, Reason: "high below low"}
		}
		if bar.Open < bar.Low || bar.Open > bar.High {
			return nil, &DataError{Index: i, Reason: "open outside high/low range"}
		}
		if bar.Close < bar.Low || bar.Close > bar.High {
			return nil, &DataError{Index: i, Reason: "close outside high/low range"}
		}
		if bar.Volume < 0 {
			return nil, &DataError{Index: i, Reason: "negative volume"}
		}
		prev = bar.Timestamp
	}

	owned := make([]Bar, len(bars))
	copy(owned, bars)
	return &Feed{bars: owned}, nil
}

// Len returns the number of bars in the feed.
func (f *Feed) Len() int {
	return len(f.bars)
}

// At returns the bar at index i. It panics on an out-of-range index, which is
// an engine bug rather than a data condition.
func (f *Feed) At(i int) Bar {
	return f.bars[i]
}

// Lookback returns the n bars ending at index i, oldest first. Callers must
// check the returned error before computing indicators over the window.
func (f *Feed) Lookback(i, n int) ([]Bar, error) {
	if n <= 0 {
		return nil, fmt.Errorf("lookback window must be positive, got %d", n)
	}
	if i >= len(f.bars) {
		return nil, fmt.Errorf("index %d out of range (%d bars)", i, len(f.bars))
	}
	if i < n-1 {
		return nil, fmt.Errorf("%w: need %d bars, have %d", ErrInsufficientHistory, n, i+1)
	}
	return f.bars[i-n+1 : i+1], nil
}

// Between returns the subset of bars with timestamps in [start, end], as a new
// Feed. Used to restrict a fetched series to the configured date range.
func (f *Feed) Between(start, end time.Time) (*Feed, error) {
	lo := 0
	for lo < len(f.bars) && f.bars[lo].Timestamp.Before(start) {
		lo++
	}
	hi := len(f.bars)
	for hi > lo && f.bars[hi-1].Timestamp.After(end) {
		hi--
	}
	if lo == hi {
		return nil, &DataError{Index: lo, Reason: "no bars within requested date range"}
	}
	return &Feed{bars: f.bars[lo:hi]}, nil
}
