package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, db.HealthCheck(ctx))
}

func TestWithTransactionCommit(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "CREATE TEMPORARY TABLE tx_probe (n INT)")
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "INSERT INTO tx_probe (n) VALUES (1)")
		return err
	})
	require.NoError(t, err)
}

func TestWithTransactionRollback(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.GetPool().Exec(ctx, "CREATE TABLE IF NOT EXISTS rollback_probe (n INT)")
	require.NoError(t, err)
	defer db.GetPool().Exec(ctx, "DROP TABLE rollback_probe")

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "INSERT INTO rollback_probe (n) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM rollback_probe").Scan(&count))
	assert.Zero(t, count, "rolled back insert must not be visible")
}
