package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/feed"
	"github.com/yourusername/stockpilot/internal/metrics"
)

const sourceNameChart = "chart_api"

// ChartClient implements Source against a Yahoo-style chart API.
// It tries the primary host first and fails over to fallbacks.
type ChartClient struct {
	httpClient *RateLimitedHTTPClient
	hosts      []string
	apiKey     string
	interval   string
	enabled    bool
	logger     *logrus.Logger
}

// chartResponse mirrors the chart API payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewChartClient creates a new chart API client.
// hosts must contain at least one base URL, primary first.
func NewChartClient(httpClient *RateLimitedHTTPClient, hosts []string, apiKey, interval string, logger *logrus.Logger) *ChartClient {
	if interval == "" {
		interval = "1d"
	}
	return &ChartClient{
		httpClient: httpClient,
		hosts:      hosts,
		apiKey:     apiKey,
		interval:   interval,
		enabled:    len(hosts) > 0,
		logger:     logger,
	}
}

// Name returns the source name
func (c *ChartClient) Name() string {
	return sourceNameChart
}

// IsEnabled returns whether the source has any hosts configured
func (c *ChartClient) IsEnabled() bool {
	return c.enabled
}

// FetchBars retrieves daily bars for a symbol, failing over across hosts
func (c *ChartClient) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]feed.Bar, error) {
	if !c.enabled {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "source disabled", nil)
	}

	var lastErr error
	for _, host := range c.hosts {
		bars, err := c.fetchFromHost(ctx, host, symbol, start, end)
		if err == nil {
			metrics.RecordMarketDataFetch(c.Name(), "success")
			return bars, nil
		}

		// Unknown symbols and bad payloads will not improve on another host
		var srcErr SourceError
		if errors.As(err, &srcErr) && (srcErr.Code == ErrCodeNotFound || srcErr.Code == ErrCodeInvalidData) {
			metrics.RecordMarketDataFetch(c.Name(), "failure")
			return nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"host":   host,
			"symbol": symbol,
		}).Warnf("Host failed, trying next: %v", err)
		lastErr = err
	}

	metrics.RecordMarketDataFetch(c.Name(), "failure")
	return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "all hosts failed", lastErr)
}

func (c *ChartClient) fetchFromHost(ctx context.Context, host, symbol string, start, end time.Time) ([]feed.Bar, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		host, symbol, start.Unix(), end.Unix(), c.interval)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewSourceError(c.Name(), ErrCodeNotFound, fmt.Sprintf("symbol %s not found", symbol), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewSourceError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	if payload.Chart.Error != nil {
		return nil, NewSourceError(c.Name(), ErrCodeNotFound, payload.Chart.Error.Description, nil)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, NewSourceError(c.Name(), ErrCodeInvalidData, "empty chart result", nil)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n || len(quote.Volume) != n {
		return nil, NewSourceError(c.Name(), ErrCodeInvalidData, "mismatched series lengths", nil)
	}

	bars := make([]feed.Bar, 0, n)
	for i := 0; i < n; i++ {
		// Null quotes come through as zero values, skip them
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}
		bars = append(bars, feed.Bar{
			Timestamp: time.Unix(result.Timestamp[i], 0).UTC(),
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
			Volume:    quote.Volume[i],
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	return bars, nil
}
