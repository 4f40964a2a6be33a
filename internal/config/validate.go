package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but the run continues.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config, e.g. "runtime.threads".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints c without modifying it.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and sink rows",
		})
	}
	issues = append(issues, validateRuntime(c.Runtime)...)
	issues = append(issues, validateSource(c.Source)...)
	issues = append(issues, validateOutput(c.Output)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateSink(c.Sink)...)

	switch c.Profile {
	case "", "cpu", "mem", "block", "trace":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "profile",
			Message:  fmt.Sprintf("unknown profile mode %q; want cpu, mem, block or trace", c.Profile),
		})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue

	if r.Threads < 1 || r.Threads > MaxThreads {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.threads",
			Message:  fmt.Sprintf("threads=%d; must be between 1 and %d", r.Threads, MaxThreads),
		})
	}
	switch {
	case r.Blocks < 1:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.blocks",
			Message:  fmt.Sprintf("blocks=%d; must be at least 1", r.Blocks),
		})
	case r.Blocks > MaxBlocks:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.blocks",
			Message:  fmt.Sprintf("blocks=%d is capped at %d", r.Blocks, MaxBlocks),
		})
	}
	if r.ParallelMerge && r.Threads == 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.parallel_merge",
			Message:  "parallel merge has nothing to merge with a single thread",
		})
	}
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Root) == "" && strings.TrimSpace(s.FilesFrom) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.root",
			Message:  "either source.root or source.files_from is required",
		})
	}
	if len(s.Extensions) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.extensions",
			Message:  "at least one extension is required",
		})
	}
	for i, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("source.extensions[%d]", i),
				Message:  fmt.Sprintf("extension %q does not look like \".ext\"; it may match nothing", ext),
			})
		}
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	if o.Top < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.top",
			Message:  "top must not be negative",
		})
	}
	if o.Silent && o.Digest {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output.digest",
			Message:  "digest is not printed in silent mode",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", MetricsNone:
	case MetricsPushgateway:
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL (flag -pushgateway-url or " + EnvPushgatewayURL + ")",
			})
		}
	case MetricsDatadog:
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires an agent address (flag -statsd-addr or " + EnvDatadogAddr + ")",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want none, pushgateway or datadog", m.Backend),
		})
	}
	return issues
}

func validateSink(s Sink) []Issue {
	if !s.Enabled() {
		return nil
	}
	var issues []Issue

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q; want postgres, mysql, mssql or sqlite", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.dsn",
			Message:  "sink.dsn must not be empty (flag -sink-dsn or " + EnvSinkDSN + ")",
		})
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.table",
			Message:  "sink.table must not be empty",
		})
	}
	if s.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the loader default will be used", s.BatchSize),
		})
	}
	return issues
}
