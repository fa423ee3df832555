package marketdata

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/stockpilot/internal/feed"
	"github.com/yourusername/stockpilot/internal/metrics"
)

// CachedSource wraps a Source with a TTL cache keyed by symbol and date range
type CachedSource struct {
	inner Source
	cache *gocache.Cache
}

// NewCachedSource creates a caching wrapper around a source
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Name returns the inner source name
func (s *CachedSource) Name() string {
	return s.inner.Name()
}

// IsEnabled returns whether the inner source is enabled
func (s *CachedSource) IsEnabled() bool {
	return s.inner.IsEnabled()
}

// FetchBars returns cached bars when available, fetching otherwise
func (s *CachedSource) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]feed.Bar, error) {
	key := cacheKey(symbol, start, end)

	if cached, found := s.cache.Get(key); found {
		metrics.RecordMarketDataCacheHit()
		return cached.([]feed.Bar), nil
	}

	bars, err := s.inner.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, bars, gocache.DefaultExpiration)
	return bars, nil
}

// Flush drops all cached entries
func (s *CachedSource) Flush() {
	s.cache.Flush()
}

func cacheKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s|%d|%d", symbol, start.Unix(), end.Unix())
}
