// Package metrics records what a word-count run did: per-step timings
// (scan, count, reduce, sort, sink), record counters (files, blocks, bytes,
// words) and sink batches.
//
// Callers go through the package-level Record* helpers. The backend behind
// them is installed once at startup with SetBackend and is a no-op until
// then. Pushgateway and DogStatsD backends live in the prompush and datadog
// subpackages.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal       = "wc_step_total"
	StepDuration    = "wc_step_duration_seconds"
	RecordsTotal    = "wc_records_total"
	SinkBatchTotal  = "wc_sink_batches_total"
	DefaultJobLabel = "fastwc"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend receives metric updates. Names are the constants above.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration in seconds.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush is called once at exit.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. A nil b is ignored.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep records latency and success/failure of one run step
// ("scan", "count", "reduce", "sort", "sink").
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordCount increments a record-level counter for the given job and kind.
//
// Kinds used by the pipeline:
//   - "files_found", "files_scanned", "files_skipped"
//   - "blocks", "bytes"
//   - "words", "distinct_words", "oversized_words"
func RecordCount(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordSinkBatches increments the number of report batches written to a
// storage sink.
func RecordSinkBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(SinkBatchTotal, float64(delta), Labels{
		"job": job,
	})
}
