package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn is a backend's bulk insert. It receives rows aligned to columns and
// returns the number of rows written. It must return promptly once ctx is
// done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// Progress reports what LoadBatches has written so far.
type Progress struct {
	Rows    int64
	Batches int64
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// hands each non-empty batch to copyFn. It stops at the first copy error or
// when ctx is canceled, returning the progress made up to that point.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (Progress, error) {
	var p Progress
	if batchSize <= 0 {
		return p, fmt.Errorf("storage: batchSize must be > 0")
	}
	if copyFn == nil {
		return p, fmt.Errorf("storage: copyFn must not be nil")
	}

	var (
		batch    = make([][]any, 0, batchSize)
		start    = time.Now()
		lastTS   = start
		lastRows int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		p.Rows += n
		batch = batch[:0]
		if err != nil {
			log.Printf("sink: copy failed rows=%d total=%d err=%v", n, p.Rows, err)
			return err
		}

		p.Batches++
		now := time.Now()
		since := now.Sub(lastTS)
		rps := float64(0)
		if since > 0 {
			rps = float64(p.Rows-lastRows) / since.Seconds()
		}
		log.Printf("sink: batch #%d rows=%d total=%d rps=%.0f elapsed=%s",
			p.Batches, n, p.Rows, rps, now.Sub(start).Truncate(time.Millisecond))
		lastTS, lastRows = now, p.Rows
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return p, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return p, err
				}
				return p, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return p, err
				}
			}
		}
	}
}
