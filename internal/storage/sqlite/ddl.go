package sqlite

import (
	"context"
	"fmt"

	"fastwc/internal/storage"
)

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	"rank"  INTEGER NOT NULL,
	"word"  TEXT NOT NULL,
	"count" INTEGER NOT NULL
)`, sqlIdent(table))
}

func ensureTable(ctx context.Context, repo storage.Repository, table string, replace bool) error {
	if err := repo.Exec(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	if replace {
		if err := repo.Exec(ctx, "DELETE FROM "+sqlIdent(table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
