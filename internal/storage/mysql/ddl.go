package mysql

import (
	"context"
	"fmt"

	"fastwc/internal/storage"
)

func createTableSQL(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n"+
		"\t`rank`  BIGINT NOT NULL,\n"+
		"\t`word`  VARCHAR(1023) CHARACTER SET latin1 COLLATE latin1_bin NOT NULL,\n"+
		"\t`count` BIGINT NOT NULL\n"+
		")", myFQN(table))
}

func ensureTable(ctx context.Context, repo storage.Repository, table string, replace bool) error {
	if err := repo.Exec(ctx, createTableSQL(table)); err != nil {
		return fmt.Errorf("mysql: create %s: %w", table, err)
	}
	if replace {
		if err := repo.Exec(ctx, "TRUNCATE TABLE "+myFQN(table)); err != nil {
			return fmt.Errorf("mysql: truncate %s: %w", table, err)
		}
	}
	return nil
}
