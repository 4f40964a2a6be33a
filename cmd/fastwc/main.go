// Command fastwc counts word frequencies across the C source files under a
// directory and prints them most frequent first.
//
// Usage:
//
//	fastwc [-n threads] [-b blocks] [-p] [-s] [-v] [flags] dir
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/profile"

	"fastwc/internal/config"
	"fastwc/internal/metrics"
	"fastwc/internal/metrics/datadog"
	"fastwc/internal/metrics/prompush"
)

// errUsage is returned for command-line mistakes; the flag set has already
// printed the usage text.
var errUsage = errors.New("usage: fastwc [flags] dir")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Getenv); err != nil {
		fatalf("%v", err)
	}
}

// options carries the CLI-only switches that are not part of config.Config.
type options struct {
	validateOnly bool
}

// parseArgs builds the effective configuration: defaults, then the -config
// file, then explicitly set flags, then the environment for anything still
// empty.
func parseArgs(args []string, stderr io.Writer, getenv func(string) string) (config.Config, options, error) {
	fs := flag.NewFlagSet("fastwc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath   string
		opts      options
		threads   = fs.Int("n", 1, "number of counting threads (1-64)")
		blocks    = fs.Int("b", config.DefaultBlocks, "1KiB blocks per read (capped at 127)")
		parallel  = fs.Bool("p", false, "merge per-thread counts in parallel (binary tree)")
		silent    = fs.Bool("s", false, "silent: print nothing to stdout")
		verbose   = fs.Bool("v", false, "enable verbose logs")
		top       = fs.Int("top", 0, "print only the N most frequent words (0 = all)")
		exts      = fs.String("ext", ".c,.h", "comma-separated file extensions to scan")
		filesFrom = fs.String("files-from", "", "read the file list from this manifest instead of walking dir")
		digest    = fs.Bool("digest", false, "print an xxh3 digest of the full report")
		prof      = fs.String("profile", "", "profile mode: cpu, mem, block or trace")
		job       = fs.String("job", config.DefaultJob, "job name for metrics labels")
		backend   = fs.String("metrics-backend", "", "metrics backend: none, pushgateway or datadog (env "+config.EnvMetricsBackend+")")
		gwURL     = fs.String("pushgateway-url", "", "Pushgateway base URL (env "+config.EnvPushgatewayURL+")")
		statsd    = fs.String("statsd-addr", "", "DogStatsD address (env "+config.EnvDatadogAddr+")")
		sinkKind  = fs.String("sink-kind", "", "export the report to postgres, mssql, mysql or sqlite")
		sinkDSN   = fs.String("sink-dsn", "", "sink connection string (env "+config.EnvSinkDSN+")")
		sinkTable = fs.String("sink-table", "word_counts", "sink table name")
		sinkBatch = fs.Int("sink-batch", 5000, "rows per sink batch")
		sinkRepl  = fs.Bool("sink-replace", false, "delete rows from earlier runs before exporting")
	)
	fs.StringVar(&cfgPath, "config", "", "JSON config file; explicitly set flags override it")
	fs.BoolVar(&opts.validateOnly, "validate", false, "validate the configuration and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.Config{}, opts, err
		}
		return config.Config{}, opts, errUsage
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return cfg, opts, err
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string, apply func()) {
		if set[name] {
			apply()
		}
	}
	override("n", func() { cfg.Runtime.Threads = *threads })
	override("b", func() { cfg.Runtime.Blocks = *blocks })
	override("p", func() { cfg.Runtime.ParallelMerge = *parallel })
	override("s", func() { cfg.Output.Silent = *silent })
	override("v", func() { cfg.Output.Verbose = *verbose })
	override("top", func() { cfg.Output.Top = *top })
	override("ext", func() { cfg.Source.Extensions = config.ParseExtensions(*exts) })
	override("files-from", func() { cfg.Source.FilesFrom = *filesFrom })
	override("digest", func() { cfg.Output.Digest = *digest })
	override("profile", func() { cfg.Profile = *prof })
	override("job", func() { cfg.Job = *job })
	override("metrics-backend", func() { cfg.Metrics.Backend = *backend })
	override("pushgateway-url", func() { cfg.Metrics.PushgatewayURL = *gwURL })
	override("statsd-addr", func() { cfg.Metrics.StatsdAddr = *statsd })
	override("sink-kind", func() { cfg.Sink.Kind = *sinkKind })
	override("sink-dsn", func() { cfg.Sink.DSN = *sinkDSN })
	override("sink-table", func() { cfg.Sink.Table = *sinkTable })
	override("sink-batch", func() { cfg.Sink.BatchSize = *sinkBatch })
	override("sink-replace", func() { cfg.Sink.Replace = *sinkRepl })

	switch fs.NArg() {
	case 0:
		if cfgPath == "" && cfg.Source.FilesFrom == "" {
			fmt.Fprintln(stderr, "No directory specified.")
			fs.Usage()
			return cfg, opts, errUsage
		}
	case 1:
		cfg.Source.Root = fs.Arg(0)
	default:
		fmt.Fprintf(stderr, "expected one directory, got %d\n", fs.NArg())
		return cfg, opts, errUsage
	}

	cfg.ApplyEnv(getenv)
	return cfg, opts, nil
}

// checkConfig prints every issue and fails when any is an error.
func checkConfig(cfg config.Config, stderr io.Writer) error {
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}
	return nil
}

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit.
func setupMetrics(cfg config.Config) (func(), error) {
	var b metrics.Backend
	switch cfg.Metrics.Backend {
	case config.MetricsPushgateway:
		pb, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		b = pb
	case config.MetricsDatadog:
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.StatsdAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			return nil, err
		}
		b = db
	default:
		if cfg.Output.Verbose {
			log.Printf("metrics: disabled (backend=%q)", cfg.Metrics.Backend)
		}
		return func() {}, nil
	}

	log.Printf("metrics: backend=%s job=%s", cfg.Metrics.Backend, cfg.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}, nil
}

// startProfile starts pkg/profile for mode, writing into the working
// directory. The returned function stops it.
func startProfile(mode string) func() {
	var opt func(*profile.Profile)
	switch strings.ToLower(mode) {
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	case "block":
		opt = profile.BlockProfile
	case "trace":
		opt = profile.TraceProfile
	default:
		return func() {}
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
