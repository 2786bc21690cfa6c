package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"rental-backend/internal/logger"
)

//go:embed schema.sql
var schema string

// Migrate creates any missing tables. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("Database schema applied")
	return nil
}
