package feed

import (
	"errors"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func flatBar(n int, price float64) Bar {
	return Bar{Timestamp: day(n), Open: price, High: price, Low: price, Close: price, Volume: 1000}
}

func TestNewFeedValidSeries(t *testing.T) {
	bars := []Bar{flatBar(0, 10), flatBar(1, 11), flatBar(2, 12)}
	f, err := NewFeed(bars)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.Len() != 3 {
		t.Fatalf("expected length 3, got %d", f.Len())
	}
	if f.At(1).Close != 11 {
		t.Errorf("expected close 11 at index 1, got %f", f.At(1).Close)
	}
}

func TestNewFeedRejectsEmptySeries(t *testing.T) {
	_, err := NewFeed(nil)
	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestNewFeedRejectsDuplicateTimestamp(t *testing.T) {
	bars := []Bar{flatBar(0, 10), flatBar(0, 11)}
	_, err := NewFeed(bars)
	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError for duplicate timestamp, got %v", err)
	}
	if dataErr.Index != 1 {
		t.Errorf("expected violation at index 1, got %d", dataErr.Index)
	}
}

func TestNewFeedRejectsNonMonotonicTimestamps(t *testing.T) {
	bars := []Bar{flatBar(1, 10), flatBar(0, 11)}
	if _, err := NewFeed(bars); err == nil {
		t.Fatal("expected error for out-of-order timestamps")
	}
}

func TestNewFeedRejectsInconsistentOHLC(t *testing.T) {
	bad := Bar{Timestamp: day(0), Open: 10, High: 9, Low: 11, Close: 10, Volume: 1}
	if _, err := NewFeed([]Bar{bad}); err == nil {
		t.Fatal("expected error for high below low")
	}
}

func TestLookback(t *testing.T) {
	bars := []Bar{flatBar(0, 10), flatBar(1, 11), flatBar(2, 12), flatBar(3, 13)}
	f, err := NewFeed(bars)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	window, err := f.Lookback(3, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(window) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(window))
	}
	if window[0].Close != 11 || window[2].Close != 13 {
		t.Errorf("unexpected window contents: %+v", window)
	}
}

func TestLookbackInsufficientHistory(t *testing.T) {
	f, err := NewFeed([]Bar{flatBar(0, 10), flatBar(1, 11)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := f.Lookback(1, 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestBetween(t *testing.T) {
	bars := []Bar{flatBar(0, 10), flatBar(1, 11), flatBar(2, 12), flatBar(3, 13)}
	f, err := NewFeed(bars)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	sub, err := f.Between(day(1), day(2))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sub.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d", sub.Len())
	}
	if sub.At(0).Close != 11 {
		t.Errorf("expected first bar close 11, got %f", sub.At(0).Close)
	}

	if _, err := f.Between(day(10), day(20)); err == nil {
		t.Fatal("expected error for empty range")
	}
}
