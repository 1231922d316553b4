package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the idempotent schema (tables, indexes and change-notification triggers).
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply database schema: %w", err)
	}
	return nil
}

// Schema returns the embedded DDL, mostly useful for tooling and tests.
func Schema() string {
	return schemaSQL
}
