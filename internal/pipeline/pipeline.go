// Package pipeline runs one word-count pass: a producer opens input files into
// the bounded handle queue, N workers count words into private tables, and the
// tables are reduced either sequentially or as a binary tree among the
// workers themselves.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"fastwc/internal/config"
	"fastwc/internal/counter"
	"fastwc/internal/datasource"
	"fastwc/internal/datasource/file"
	"fastwc/internal/metrics"
	"fastwc/internal/producer"
	"fastwc/internal/queue"
	"fastwc/internal/reduce"
)

var (
	// ErrFileCountMismatch means workers claimed a different number of files
	// than the producer submitted.
	ErrFileCountMismatch = errors.New("pipeline: file count mismatch")
	// ErrWordTooLong means at least one word exceeded token.MaxWordLen.
	ErrWordTooLong = errors.New("pipeline: word is unreasonably long")
)

// Options configures a run.
type Options struct {
	Threads       int  // workers, 1..config.MaxThreads
	BlockSize     int  // bytes per read
	ParallelMerge bool // tree reduction among workers instead of sequential

	// Opener opens input paths; nil means file.NewLocal().
	Opener datasource.Opener
	// Logger receives diagnostics; nil means log.Default().
	Logger *log.Logger
	// Verbose adds per-phase log lines.
	Verbose bool
	// Job labels metrics; empty means config.DefaultJob.
	Job string
}

// Result is the outcome of a run.
type Result struct {
	Counts  counter.Table // aggregate; nil when the run failed
	Stats   counter.Snapshot
	Summary producer.Summary
	Elapsed time.Duration
}

// Run counts the words of every file in paths.
//
// On ErrFileCountMismatch or ErrWordTooLong the returned Result carries Stats
// and Summary but no Counts, so callers can still report what was scanned.
// Any other error returns a nil Result.
func Run(ctx context.Context, opts Options, paths []string) (*Result, error) {
	n := opts.Threads
	if n < 1 || n > config.MaxThreads {
		return nil, fmt.Errorf("pipeline: threads=%d outside [1,%d]", n, config.MaxThreads)
	}
	if opts.BlockSize <= 0 {
		return nil, fmt.Errorf("pipeline: block size must be > 0")
	}
	lg := opts.Logger
	if lg == nil {
		lg = log.Default()
	}
	opener := opts.Opener
	if opener == nil {
		opener = file.NewLocal()
	}
	job := opts.Job
	if job == "" {
		job = config.DefaultJob
	}

	q, err := queue.New(n)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	var (
		start  = time.Now()
		stats  counter.Stats
		tables = make([]counter.Table, n)
		tree   *reduce.Tree
		sum    producer.Summary
	)
	if opts.ParallelMerge {
		tree = reduce.NewTree(n)
	}
	if opts.Verbose {
		lg.Printf("pipeline: start files=%d threads=%d block=%d merge=%s",
			len(paths), n, opts.BlockSize, mergeName(opts.ParallelMerge))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p := &producer.Producer{Queue: q, Workers: n, Opener: opener, Logger: lg}
		var err error
		sum, err = p.Run(gctx, paths)
		return err
	})
	for id := 0; id < n; id++ {
		g.Go(func() error {
			w := &counter.Worker{ID: id, Queue: q, BlockSize: opts.BlockSize, Stats: &stats, Logger: lg}
			t, err := w.Run(gctx)
			tables[id] = t
			if err != nil {
				return err
			}
			if tree != nil {
				return tree.Merge(gctx, id, tables)
			}
			return nil
		})
	}
	err = g.Wait()
	countDur := time.Since(start)
	metrics.RecordStep(job, "count", err, countDur)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	res := &Result{Stats: stats.Snapshot(), Summary: sum}
	recordCounts(job, res)
	if opts.Verbose {
		lg.Printf("pipeline: counted files=%d blocks=%d bytes=%d words=%d elapsed=%s",
			res.Stats.Files, res.Stats.Blocks, res.Stats.Bytes, res.Stats.Words,
			countDur.Truncate(time.Millisecond))
	}

	if res.Stats.Files != int64(sum.Submitted) {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("%w: submitted=%d claimed=%d", ErrFileCountMismatch, sum.Submitted, res.Stats.Files)
	}
	if res.Stats.Oversized > 0 {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("%w: %d words over the limit", ErrWordTooLong, res.Stats.Oversized)
	}

	reduceStart := time.Now()
	if tree != nil {
		res.Counts = tables[0]
	} else {
		res.Counts = reduce.Sequential(tables)
	}
	if res.Counts == nil {
		res.Counts = counter.NewTable(0)
	}
	metrics.RecordStep(job, "reduce", nil, time.Since(reduceStart))
	metrics.RecordCount(job, "distinct_words", int64(len(res.Counts)))
	if opts.Verbose {
		lg.Printf("pipeline: reduced strategy=%s rounds=%d distinct=%d",
			mergeName(opts.ParallelMerge), reduce.Rounds(n), len(res.Counts))
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func recordCounts(job string, res *Result) {
	metrics.RecordCount(job, "files_found", int64(res.Summary.Found))
	metrics.RecordCount(job, "files_scanned", res.Stats.Files)
	metrics.RecordCount(job, "files_skipped", int64(res.Summary.Skipped))
	metrics.RecordCount(job, "blocks", res.Stats.Blocks)
	metrics.RecordCount(job, "bytes", res.Stats.Bytes)
	metrics.RecordCount(job, "words", res.Stats.Words)
	metrics.RecordCount(job, "oversized_words", res.Stats.Oversized)
}

func mergeName(parallel bool) string {
	if parallel {
		return "tree"
	}
	return "sequential"
}
