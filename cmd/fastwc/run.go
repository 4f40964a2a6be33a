package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fastwc/internal/config"
	"fastwc/internal/datasource/file"
	"fastwc/internal/metrics"
	"fastwc/internal/pipeline"
	"fastwc/internal/report"
	"fastwc/internal/storage"

	// Register every sink backend; -sink-kind picks one at run time.
	_ "fastwc/internal/storage/all"
)

// exportReport is a test seam for the storage sink.
var exportReport = func(ctx context.Context, s storage.Sink, entries []report.Entry) (storage.Progress, error) {
	return s.Export(ctx, entries)
}

// run is the whole command: resolve configuration, find files, count, print
// and export. Progress and the report go to stdout; diagnostics go through
// the standard logger.
func run(ctx context.Context, args []string, stdout io.Writer, getenv func(string) string) error {
	cfg, opts, err := parseArgs(args, os.Stderr, getenv)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := checkConfig(cfg, os.Stderr); err != nil {
		return err
	}
	if opts.validateOnly {
		log.Printf("configuration is valid")
		return nil
	}

	defer startProfile(cfg.Profile)()
	flush, err := setupMetrics(cfg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer flush()

	start := time.Now()
	silent := cfg.Output.Silent
	blocks := min(cfg.Runtime.Blocks, config.MaxBlocks)

	if !silent {
		fmt.Fprintf(stdout, "fast-wc with %d cores, %d blocks per read, parallel merge %s\n",
			cfg.Runtime.Threads, blocks, onOff(cfg.Runtime.ParallelMerge))
	}

	paths, where, err := findFiles(cfg)
	metrics.RecordStep(cfg.Job, "scan", err, time.Since(start))
	if err != nil {
		return err
	}
	if !silent {
		fmt.Fprintf(stdout, "In %s found %d files to scan\n", where, len(paths))
	}

	res, err := pipeline.Run(ctx, pipeline.Options{
		Threads:       cfg.Runtime.Threads,
		BlockSize:     cfg.Runtime.BlockSize(),
		ParallelMerge: cfg.Runtime.ParallelMerge,
		Opener:        file.NewLocal(),
		Verbose:       cfg.Output.Verbose,
		Job:           cfg.Job,
	}, paths)
	if err != nil {
		if res != nil && errors.Is(err, pipeline.ErrFileCountMismatch) {
			return fmt.Errorf("expected to scan %d files, but in fact scanned %d: %w",
				res.Summary.Submitted, res.Stats.Files, err)
		}
		return err
	}

	if !silent {
		fmt.Fprintf(stdout, "Blocks scanned: %d, bytes %d (%s)\n",
			res.Stats.Blocks, res.Stats.Bytes, humanize.IBytes(uint64(res.Stats.Bytes)))
	}
	if res.Stats.Blocks == 0 || res.Stats.Bytes == 0 {
		if cfg.Output.Verbose {
			log.Printf("nothing scanned; no report")
		}
		return nil
	}

	sortStart := time.Now()
	entries := report.Sort(res.Counts)
	metrics.RecordStep(cfg.Job, "sort", nil, time.Since(sortStart))

	if !silent {
		fmt.Fprintf(stdout, "Counted %d words, %d unique, in %s\n",
			res.Stats.Words, len(entries), res.Elapsed.Truncate(time.Millisecond))
		if err := report.Write(stdout, report.Top(entries, cfg.Output.Top)); err != nil {
			return err
		}
		if cfg.Output.Digest {
			fmt.Fprintf(stdout, "Report digest: %016x\n", report.Digest(entries))
		}
	}

	if cfg.Sink.Enabled() {
		sink := storage.Sink{
			Config:    storage.Config{Kind: cfg.Sink.Kind, DSN: cfg.Sink.DSN, Table: cfg.Sink.Table},
			BatchSize: cfg.Sink.BatchSize,
			Replace:   cfg.Sink.Replace,
			Job:       cfg.Job,
		}
		prog, err := exportReport(ctx, sink, entries)
		if err != nil {
			return fmt.Errorf("sink: %w", err)
		}
		if cfg.Output.Verbose {
			log.Printf("sink: exported rows=%d batches=%d", prog.Rows, prog.Batches)
		}
	}

	if cfg.Output.Verbose {
		p := message.NewPrinter(language.English)
		log.Print(p.Sprintf("completed in %s: files=%d words=%d distinct=%d bytes=%d",
			time.Since(start).Truncate(time.Millisecond),
			res.Stats.Files, res.Stats.Words, len(entries), res.Stats.Bytes))
	}
	return nil
}

// findFiles returns the input paths and a description of where they came
// from for the progress line.
func findFiles(cfg config.Config) ([]string, string, error) {
	m := file.NewMatcher(cfg.Source.Extensions)
	if cfg.Source.FilesFrom != "" {
		paths, err := file.ReadList(cfg.Source.FilesFrom, m)
		if err != nil {
			return nil, "", fmt.Errorf("file scanner unable to read list %s: %w", cfg.Source.FilesFrom, err)
		}
		return paths, cfg.Source.FilesFrom, nil
	}
	paths, err := file.Find(cfg.Source.Root, m)
	if err != nil {
		return nil, "", fmt.Errorf("file scanner unable to access folder %s: %w", cfg.Source.Root, err)
	}
	return paths, cfg.Source.Root, nil
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
