package db

import (
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
)

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// HandleQueryError counts err against operation and wraps it. No rows maps
// to notFoundErr and is not counted.
func HandleQueryError(err error, notFoundErr error, operation string) error {
	if err == nil {
		return nil
	}
	if IsNoRows(err) && notFoundErr != nil {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(operation, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}
