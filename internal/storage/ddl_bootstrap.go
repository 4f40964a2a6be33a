package storage

import (
	"context"
	"fmt"
	"sync"
)

// ReportColumns is the layout of a report table: the 1-based position of the
// entry in report order, the word, and its count.
var ReportColumns = []string{"rank", "word", "count"}

// DDLBootstrapper creates the report table for one backend if it does not
// exist yet. With replace set it also removes rows left by earlier runs.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, replace bool) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind. Backends
// call it from init().
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for cfg.Kind against repo.
func EnsureTable(ctx context.Context, cfg Config, repo Repository, replace bool) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", cfg.Kind)
	}
	return fn(ctx, repo, cfg.Table, replace)
}
