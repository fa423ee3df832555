package marketdata

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/config"
)

// NewFromConfig builds a cached chart source from application configuration
func NewFromConfig(cfg *config.MarketDataConfig, logger *logrus.Logger) Source {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.RetryAttempts > 0 {
		httpCfg.MaxRetries = cfg.RetryAttempts
	}
	if cfg.RateLimitPerSecond > 0 {
		httpCfg.RateLimit = cfg.RateLimitPerSecond
	}

	hosts := make([]string, 0, 1+len(cfg.FallbackURLs))
	if cfg.PrimaryURL != "" {
		hosts = append(hosts, cfg.PrimaryURL)
	}
	hosts = append(hosts, cfg.FallbackURLs...)

	client := NewRateLimitedHTTPClient(httpCfg, logger)
	chart := NewChartClient(client, hosts, cfg.APIKey, cfg.Interval, logger)

	ttl := 15 * time.Minute
	if cfg.CacheTTLSeconds > 0 {
		ttl = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
	return NewCachedSource(chart, ttl)
}
