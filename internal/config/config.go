// Package config provides configuration management for the StockPilot application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Sweep      SweepConfig      `mapstructure:"sweep" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	Pools      PoolsConfig      `mapstructure:"pools" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// BacktestConfig represents backtest run configuration
type BacktestConfig struct {
	StartDate             string  `mapstructure:"start_date" validate:"required,datestr"`
	EndDate               string  `mapstructure:"end_date" validate:"required,datestr"`
	StartCash             float64 `mapstructure:"start_cash" validate:"gte=0"`
	CommissionRate        float64 `mapstructure:"commission_rate" validate:"gte=0,lte=1"`
	Stake                 int     `mapstructure:"stake" validate:"required,gt=0"`
	RiskFreeRate          float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	DrawdownAlertPercent  float64 `mapstructure:"drawdown_alert_percent" validate:"gte=0,lte=100"`
	OutputPath            string  `mapstructure:"output_path" validate:"required"`
}

// SweepConfig represents parameter sweep configuration
type SweepConfig struct {
	Workers int    `mapstructure:"workers" validate:"required,gt=0"`
	SortBy  string `mapstructure:"sort_by" validate:"required,sweepmetric"`
}

// MarketDataConfig represents market data source configuration
type MarketDataConfig struct {
	PrimaryURL          string   `mapstructure:"primary_url" validate:"required,url"`
	FallbackURLs        []string `mapstructure:"fallback_urls" validate:"dive,url"`
	APIKey              string   `mapstructure:"api_key"`
	TimeoutSeconds      int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts       int      `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond  float64  `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds     int      `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	Interval            string   `mapstructure:"interval" validate:"required,barinterval"`
}

// PoolsConfig represents stock pool storage configuration
type PoolsConfig struct {
	Dir             string `mapstructure:"dir" validate:"required"`
	RefreshSchedule string `mapstructure:"refresh_schedule" validate:"required"`
}

// DatabaseConfig represents optional result persistence configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
