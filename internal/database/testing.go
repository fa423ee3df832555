package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/stockpilot/internal/config"
)

// SetupTestDB creates a test database connection and verifies it.
// Tests are skipped unless STOCKPILOT_TEST_DB_HOST is set.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("STOCKPILOT_TEST_DB_HOST")
	if host == "" {
		t.Skip("integration test, set STOCKPILOT_TEST_DB_HOST to run")
	}

	cfg := &config.DatabaseConfig{
		Enabled:            true,
		Host:               host,
		Port:               5432,
		Name:               "stockpilot_test",
		User:               "stockpilot",
		Password:           os.Getenv("STOCKPILOT_TEST_DB_PASSWORD"),
		SSLMode:            "disable",
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer verifyCancel()

	if err := db.Ping(verifyCtx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}
