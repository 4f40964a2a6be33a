package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"fastwc/internal/metrics"
	"fastwc/internal/report"
)

// DefaultBatchSize is used when Sink.BatchSize is not positive.
const DefaultBatchSize = 5000

// newRepository is a test seam for New.
var newRepository = New

// Sink exports a sorted report to a database table.
type Sink struct {
	Config    Config
	BatchSize int
	// Replace deletes rows from earlier runs before loading.
	Replace bool
	// Job labels the metrics emitted by Export.
	Job string
}

// Export opens the backend, makes sure the table exists and bulk-loads one
// row per entry: (rank, word, count), rank starting at 1.
func (s Sink) Export(ctx context.Context, entries []report.Entry) (p Progress, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStep(s.Job, "sink", err, time.Since(start))
		metrics.RecordSinkBatches(s.Job, p.Batches)
	}()

	cfg := s.Config
	if len(cfg.Columns) == 0 {
		cfg.Columns = ReportColumns
	}
	if len(cfg.Columns) != len(ReportColumns) {
		return p, fmt.Errorf("storage: report table needs %d columns, got %d", len(ReportColumns), len(cfg.Columns))
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	repo, err := newRepository(ctx, cfg)
	if err != nil {
		return p, fmt.Errorf("storage: open %s: %w", cfg.Kind, err)
	}
	defer repo.Close()

	if err := EnsureTable(ctx, cfg, repo, s.Replace); err != nil {
		return p, fmt.Errorf("storage: ensure table %s: %w", cfg.Table, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, batch)
	g.Go(func() error {
		defer close(rows)
		for i, e := range entries {
			select {
			case rows <- RowFor(i, e):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		var lerr error
		p, lerr = LoadBatches(gctx, cfg.Columns, rows, batch, repo.CopyFrom)
		return lerr
	})
	if err := g.Wait(); err != nil {
		return p, fmt.Errorf("storage: load %s: %w", cfg.Table, err)
	}
	log.Printf("sink: kind=%s table=%s rows=%d batches=%d", cfg.Kind, cfg.Table, p.Rows, p.Batches)
	return p, nil
}

// RowFor converts the i-th report entry to a row in ReportColumns order.
func RowFor(i int, e report.Entry) []any {
	return []any{int64(i + 1), e.Word, int64(e.Count)}
}
