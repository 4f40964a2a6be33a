// Package config defines the JSON-serializable run configuration for fastwc.
//
// A config file supplies defaults; command-line flags override it field by
// field; a few environment variables fill in deployment settings (metrics
// endpoints, sink DSN) that are awkward to pass on the command line.
//
// Example:
//
//	{
//	  "job":     "nightly-kernel-scan",
//	  "runtime": { "threads": 8, "blocks": 32, "parallel_merge": true },
//	  "source":  { "root": "/src/linux", "extensions": [".c", ".h"] },
//	  "output":  { "top": 100 },
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://pgw:9091" },
//	  "sink":    { "kind": "sqlite", "dsn": "wc.db", "table": "word_counts", "replace": true }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	// MaxThreads bounds the worker count.
	MaxThreads = 64
	// BaseBlock is the unit of the per-read buffer size.
	BaseBlock = 1024
	// MaxBlocks bounds the per-read buffer at MaxBlocks*BaseBlock bytes.
	MaxBlocks = 127
	// DefaultBlocks is the blocks-per-read used when nothing is configured.
	DefaultBlocks = 16
	// DefaultJob labels metrics when no job name is configured.
	DefaultJob = "fastwc"
)

// Metrics backend names.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Job names the run in metrics and logs.
	Job string `json:"job"`

	Runtime Runtime `json:"runtime"`
	Source  Source  `json:"source"`
	Output  Output  `json:"output"`
	Metrics Metrics `json:"metrics"`
	Sink    Sink    `json:"sink"`

	// Profile enables pkg/profile: "", "cpu", "mem", "block" or "trace".
	Profile string `json:"profile"`
}

// Runtime controls concurrency and read sizes.
type Runtime struct {
	Threads       int  `json:"threads"`
	Blocks        int  `json:"blocks"`
	ParallelMerge bool `json:"parallel_merge"`
}

// BlockSize returns the per-read buffer size in bytes, with Blocks clamped to
// [1, MaxBlocks].
func (r Runtime) BlockSize() int {
	return min(max(r.Blocks, 1), MaxBlocks) * BaseBlock
}

// Source describes which files are scanned.
type Source struct {
	// Root is the directory walked for matching files.
	Root string `json:"root"`
	// Extensions lists accepted file extensions, including the dot.
	Extensions []string `json:"extensions"`
	// FilesFrom names a manifest with one path per line. When set, Root is
	// not walked.
	FilesFrom string `json:"files_from"`
}

// Output controls what is printed.
type Output struct {
	Silent  bool `json:"silent"`
	Verbose bool `json:"verbose"`
	// Top limits the printed report to the first Top entries; 0 prints all.
	Top    int  `json:"top"`
	Digest bool `json:"digest"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	StatsdAddr     string `json:"statsd_addr"`
}

// Sink configures the optional database export of the report. An empty Kind
// disables it.
type Sink struct {
	Kind      string `json:"kind"`
	DSN       string `json:"dsn"`
	Table     string `json:"table"`
	BatchSize int    `json:"batch_size"`
	Replace   bool   `json:"replace"`
}

// Enabled reports whether a sink is configured.
func (s Sink) Enabled() bool { return strings.TrimSpace(s.Kind) != "" }

// Default returns the configuration used when no file or flags are given.
func Default() Config {
	return Config{
		Job: DefaultJob,
		Runtime: Runtime{
			Threads: 1,
			Blocks:  DefaultBlocks,
		},
		Source: Source{
			Root:       ".",
			Extensions: []string{".c", ".h"},
		},
		Metrics: Metrics{Backend: MetricsNone},
		Sink: Sink{
			Table:     "word_counts",
			BatchSize: 5000,
		},
	}
}

// Load reads a JSON config file on top of Default. Unknown fields are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Environment variables consulted by ApplyEnv.
const (
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DD_AGENT_ADDR"
	EnvSinkDSN        = "FASTWC_SINK_DSN"
)

// ApplyEnv fills fields that are still empty from the environment. getenv is
// normally os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.Metrics.Backend == "" || c.Metrics.Backend == MetricsNone {
		if v := getenv(EnvMetricsBackend); v != "" {
			c.Metrics.Backend = v
		}
	}
	if c.Metrics.PushgatewayURL == "" {
		c.Metrics.PushgatewayURL = getenv(EnvPushgatewayURL)
	}
	if c.Metrics.StatsdAddr == "" {
		c.Metrics.StatsdAddr = getenv(EnvDatadogAddr)
	}
	if c.Sink.DSN == "" {
		c.Sink.DSN = getenv(EnvSinkDSN)
	}
}

// ParseExtensions splits a comma-separated list such as ".c,.h" and adds a
// leading dot where it is missing.
func ParseExtensions(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	return out
}
