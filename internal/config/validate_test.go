package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func TestValidate_DefaultIsClean(t *testing.T) {
	t.Parallel()

	if issues := Validate(Default()); len(issues) != 0 {
		t.Fatalf("Validate(Default()) = %+v, want no issues", issues)
	}
}

func TestValidate_MissingJob(t *testing.T) {
	t.Parallel()

	c := Default()
	c.Job = " "
	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected job error; got %+v", issues)
	}
	if !HasErrors(issues) {
		t.Fatalf("HasErrors = false")
	}
}

func TestValidateRuntime_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rt   Runtime
		sev  IssueSeverity
		path string
		msg  string
	}{
		{"zero_threads", Runtime{Threads: 0, Blocks: 1}, SeverityError, "runtime.threads", "between 1 and 64"},
		{"too_many_threads", Runtime{Threads: MaxThreads + 1, Blocks: 1}, SeverityError, "runtime.threads", "between 1 and 64"},
		{"zero_blocks", Runtime{Threads: 2, Blocks: 0}, SeverityError, "runtime.blocks", "at least 1"},
		{"blocks_capped", Runtime{Threads: 2, Blocks: 500}, SeverityWarning, "runtime.blocks", "capped at 127"},
		{"merge_single_thread", Runtime{Threads: 1, Blocks: 1, ParallelMerge: true}, SeverityWarning, "runtime.parallel_merge", "single thread"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if issues := validateRuntime(tt.rt); !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("validateRuntime(%+v) = %+v, want %s at %s", tt.rt, issues, tt.sev, tt.path)
			}
		})
	}

	if issues := validateRuntime(Runtime{Threads: MaxThreads, Blocks: MaxBlocks, ParallelMerge: true}); len(issues) != 0 {
		t.Fatalf("limits should be accepted, got %+v", issues)
	}
}

func TestValidateSource_Cases(t *testing.T) {
	t.Parallel()

	t.Run("no_root_or_manifest", func(t *testing.T) {
		issues := validateSource(Source{Extensions: []string{".c"}})
		if !hasIssue(t, issues, SeverityError, "source.root", "files_from") {
			t.Fatalf("got %+v", issues)
		}
	})
	t.Run("manifest_only", func(t *testing.T) {
		if issues := validateSource(Source{FilesFrom: "list.txt", Extensions: []string{".c"}}); len(issues) != 0 {
			t.Fatalf("got %+v", issues)
		}
	})
	t.Run("no_extensions", func(t *testing.T) {
		issues := validateSource(Source{Root: "."})
		if !hasIssue(t, issues, SeverityError, "source.extensions", "at least one") {
			t.Fatalf("got %+v", issues)
		}
	})
	t.Run("odd_extension", func(t *testing.T) {
		issues := validateSource(Source{Root: ".", Extensions: []string{".c", "h"}})
		if !hasIssue(t, issues, SeverityWarning, "source.extensions[1]", "may match nothing") {
			t.Fatalf("got %+v", issues)
		}
	})
}

func TestValidateMetrics_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		m       Metrics
		path    string
		wantErr bool
	}{
		{"none", Metrics{Backend: MetricsNone}, "", false},
		{"empty", Metrics{}, "", false},
		{"pushgateway_without_url", Metrics{Backend: MetricsPushgateway}, "metrics.pushgateway_url", true},
		{"pushgateway_ok", Metrics{Backend: MetricsPushgateway, PushgatewayURL: "http://pgw:9091"}, "", false},
		{"datadog_without_addr", Metrics{Backend: MetricsDatadog}, "metrics.statsd_addr", true},
		{"datadog_ok", Metrics{Backend: MetricsDatadog, StatsdAddr: "127.0.0.1:8125"}, "", false},
		{"unknown", Metrics{Backend: "graphite"}, "metrics.backend", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			issues := validateMetrics(tt.m)
			if !tt.wantErr {
				if len(issues) != 0 {
					t.Fatalf("got %+v, want none", issues)
				}
				return
			}
			if !hasIssue(t, issues, SeverityError, tt.path, "") {
				t.Fatalf("got %+v, want error at %s", issues, tt.path)
			}
		})
	}
}

func TestValidateSink_Cases(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		if issues := validateSink(Sink{}); issues != nil {
			t.Fatalf("got %+v", issues)
		}
	})
	t.Run("unknown_kind_and_missing_fields", func(t *testing.T) {
		issues := validateSink(Sink{Kind: "oracle"})
		for _, path := range []string{"sink.kind", "sink.dsn", "sink.table"} {
			if !hasIssue(t, issues, SeverityError, path, "") {
				t.Fatalf("missing error at %s: %+v", path, issues)
			}
		}
		if !hasIssue(t, issues, SeverityWarning, "sink.batch_size", "default") {
			t.Fatalf("missing batch size warning: %+v", issues)
		}
	})
	t.Run("valid", func(t *testing.T) {
		s := Sink{Kind: "sqlite", DSN: "wc.db", Table: "word_counts", BatchSize: 100}
		if issues := validateSink(s); len(issues) != 0 {
			t.Fatalf("got %+v", issues)
		}
	})
}

func TestValidate_ProfileAndOutput(t *testing.T) {
	t.Parallel()

	c := Default()
	c.Profile = "heap"
	c.Output.Top = -1
	c.Output.Silent = true
	c.Output.Digest = true
	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "profile", "unknown profile") {
		t.Fatalf("missing profile error: %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "output.top", "negative") {
		t.Fatalf("missing top error: %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "output.digest", "silent") {
		t.Fatalf("missing digest warning: %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "runtime.threads", Message: "bad"}
	if got, want := iss.Error(), "error at runtime.threads: bad"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
