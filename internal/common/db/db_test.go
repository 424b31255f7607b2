package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/db/migrations"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter(&bytes.Buffer{}, "test", "error")
}

var fastRetry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "08006"})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(pgx.ErrNoRows))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(nil))
}

func TestRetryWithBackoff_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), testLogger(), fastRetry, "list_users", func() error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("syntax error")
	attempts := 0
	err := RetryWithBackoff(context.Background(), testLogger(), fastRetry, "list_users", func() error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	err := RetryWithBackoff(context.Background(), testLogger(), fastRetry, "append_user", func() error {
		return &pgconn.PgError{Code: "08000"}
	})

	assert.ErrorContains(t, err, "failed after 3 attempts")
}

func TestHandleQueryError(t *testing.T) {
	notFound := errors.New("not found")

	assert.NoError(t, HandleQueryError(nil, notFound, "count_users"))
	assert.ErrorIs(t, HandleQueryError(pgx.ErrNoRows, notFound, "count_users"), notFound)

	boom := errors.New("boom")
	err := HandleQueryError(boom, notFound, "count_users")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to count_users")
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	var dir string
	gooseUp = func(ctx context.Context, db *sql.DB, d string) error {
		dir = d
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), testLogger(), nil))
	assert.Equal(t, ".", dir)
}

func TestRunMigrations_WrapsError(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("dirty") }

	assert.ErrorContains(t, RunMigrations(context.Background(), testLogger(), nil), "failed to apply migrations")
}

func TestMigrationsEmbedded(t *testing.T) {
	body, err := migrations.Migrations.ReadFile("00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "GENERATED ALWAYS AS IDENTITY")
}
