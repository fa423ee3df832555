package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/feed"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, quietLogger())
}

func chartPayload(timestamps []int64, closes []float64) string {
	ts, op, hi, lo, cl, vol := "", "", "", "", "", ""
	for i, t := range timestamps {
		if i > 0 {
			ts, op, hi, lo, cl, vol = ts+",", op+",", hi+",", lo+",", cl+",", vol+","
		}
		c := closes[i]
		ts += fmt.Sprintf("%d", t)
		op += fmt.Sprintf("%g", c-1)
		hi += fmt.Sprintf("%g", c+1)
		lo += fmt.Sprintf("%g", c-2)
		cl += fmt.Sprintf("%g", c)
		vol += "1000"
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		ts, op, hi, lo, cl, vol)
}

// TestChartClientFetchBars tests parsing of a well-formed chart response
func TestChartClientFetchBars(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartPayload(
			[]int64{base, base + 86400, base + 2*86400},
			[]float64{100, 101, 102},
		))
	}))
	defer server.Close()

	client := NewChartClient(testHTTPClient(), []string{server.URL}, "", "1d", quietLogger())

	bars, err := client.FetchBars(context.Background(), "AAPL", time.Unix(base, 0), time.Unix(base+3*86400, 0))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Close != 100 || bars[2].Close != 102 {
		t.Errorf("unexpected closes: %v, %v", bars[0].Close, bars[2].Close)
	}
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Error("expected bars sorted by timestamp")
	}
}

// TestChartClientFallbackHost tests failover to a secondary host
func TestChartClientFallbackHost(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Unix()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartPayload([]int64{base}, []float64{50}))
	}))
	defer good.Close()

	client := NewChartClient(testHTTPClient(), []string{bad.URL, good.URL}, "", "1d", quietLogger())

	bars, err := client.FetchBars(context.Background(), "MSFT", time.Unix(base, 0), time.Unix(base+86400, 0))
	if err != nil {
		t.Fatalf("expected fallback to succeed, got: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 50 {
		t.Errorf("unexpected bars from fallback: %+v", bars)
	}
}

// TestChartClientSymbolNotFound tests that unknown symbols do not try fallbacks
func TestChartClientSymbolNotFound(t *testing.T) {
	var fallbackCalls int

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackCalls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer fallback.Close()

	client := NewChartClient(testHTTPClient(), []string{primary.URL, fallback.URL}, "", "1d", quietLogger())

	_, err := client.FetchBars(context.Background(), "NOPE", time.Now().Add(-24*time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}

	var srcErr SourceError
	if !errors.As(err, &srcErr) || srcErr.Code != ErrCodeNotFound {
		t.Errorf("expected not_found error, got: %v", err)
	}
	if fallbackCalls != 0 {
		t.Errorf("expected no fallback calls for unknown symbol, got %d", fallbackCalls)
	}
}

// TestChartClientAllHostsFail tests exhaustion of every host
func TestChartClientAllHostsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewChartClient(testHTTPClient(), []string{server.URL}, "", "1d", quietLogger())

	_, err := client.FetchBars(context.Background(), "AAPL", time.Now().Add(-24*time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error when all hosts fail")
	}
}

// fakeSource counts fetches for cache tests
type fakeSource struct {
	calls int
	bars  []feed.Bar
	err   error
}

func (f *fakeSource) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]feed.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func (f *fakeSource) Name() string    { return "fake" }
func (f *fakeSource) IsEnabled() bool { return true }

// TestCachedSourceHit tests that repeated fetches are served from cache
func TestCachedSourceHit(t *testing.T) {
	inner := &fakeSource{bars: []feed.Bar{{
		Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:      99, High: 101, Low: 98, Close: 100, Volume: 1000,
	}}}
	cached := NewCachedSource(inner, time.Minute)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		bars, err := cached.FetchBars(context.Background(), "AAPL", start, end)
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if len(bars) != 1 {
			t.Fatalf("fetch %d: expected 1 bar, got %d", i, len(bars))
		}
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
}

// TestCachedSourceDistinctRanges tests that different ranges miss the cache
func TestCachedSourceDistinctRanges(t *testing.T) {
	inner := &fakeSource{bars: []feed.Bar{}}
	cached := NewCachedSource(inner, time.Minute)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := cached.FetchBars(context.Background(), "AAPL", start, start.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if _, err := cached.FetchBars(context.Background(), "AAPL", start, start.AddDate(0, 2, 0)); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("expected 2 upstream calls for distinct ranges, got %d", inner.calls)
	}
}

// TestCachedSourceErrorNotCached tests that failures are not cached
func TestCachedSourceErrorNotCached(t *testing.T) {
	inner := &fakeSource{err: errors.New("boom")}
	cached := NewCachedSource(inner, time.Minute)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if _, err := cached.FetchBars(context.Background(), "AAPL", start, start.AddDate(0, 1, 0)); err == nil {
			t.Fatal("expected error from inner source")
		}
	}

	if inner.calls != 2 {
		t.Errorf("expected errors to bypass cache, got %d calls", inner.calls)
	}
}
