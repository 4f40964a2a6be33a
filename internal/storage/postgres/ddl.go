package postgres

import (
	"context"
	"fmt"

	"fastwc/internal/storage"
)

// createTableSQL returns the report table DDL. Words are at most 1023 bytes.
func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"rank"  BIGINT NOT NULL,
	"word"  VARCHAR(1023) NOT NULL,
	"count" BIGINT NOT NULL
)`, pgFQN(table))
}

func ensureTable(ctx context.Context, repo storage.Repository, table string, replace bool) error {
	if err := repo.Exec(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("postgres: create %s: %w", table, err)
	}
	if replace {
		if err := repo.Exec(ctx, "TRUNCATE TABLE "+pgFQN(table)); err != nil {
			return fmt.Errorf("postgres: truncate %s: %w", table, err)
		}
	}
	return nil
}
