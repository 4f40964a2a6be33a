package mssql

import (
	"context"
	"fmt"

	"fastwc/internal/storage"
)

// createTableSQL creates the report table unless OBJECT_ID already finds it.
func createTableSQL(table string) string {
	return fmt.Sprintf(`IF OBJECT_ID(%s, N'U') IS NULL
CREATE TABLE %s (
	[rank]  BIGINT NOT NULL,
	[word]  NVARCHAR(1023) NOT NULL,
	[count] BIGINT NOT NULL
)`, quoteLiteral(table), msFQN(table))
}

func ensureTable(ctx context.Context, repo storage.Repository, table string, replace bool) error {
	if err := repo.Exec(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("mssql: create %s: %w", table, err)
	}
	if replace {
		if err := repo.Exec(ctx, "TRUNCATE TABLE "+msFQN(table)); err != nil {
			return fmt.Errorf("mssql: truncate %s: %w", table, err)
		}
	}
	return nil
}
