package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type call struct {
	kind   string // "counter" or "histogram"
	name   string
	value  float64
	labels Labels
}

type recorder struct {
	mu      sync.Mutex
	calls   []call
	flushes int
}

func (r *recorder) IncCounter(name string, delta float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"counter", name, delta, labels})
}

func (r *recorder) ObserveHistogram(name string, value float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"histogram", name, value, labels})
}

func (r *recorder) Flush() error {
	r.flushes++
	return nil
}

// install swaps in a recorder for the duration of the test. Tests touching the
// global backend must not run in parallel.
func install(t *testing.T) *recorder {
	t.Helper()
	prev := current()
	r := &recorder{}
	SetBackend(r)
	t.Cleanup(func() { SetBackend(prev) })
	return r
}

func TestRecordStep(t *testing.T) {
	r := install(t)

	RecordStep("job1", "count", nil, 1500*time.Millisecond)
	RecordStep("job1", "sink", errors.New("boom"), time.Second)

	if len(r.calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(r.calls))
	}
	if c := r.calls[0]; c.name != StepTotal || c.labels["status"] != "success" || c.labels["step"] != "count" {
		t.Fatalf("first call = %+v", c)
	}
	if c := r.calls[1]; c.kind != "histogram" || c.name != StepDuration || c.value != 1.5 {
		t.Fatalf("second call = %+v", c)
	}
	if c := r.calls[2]; c.labels["status"] != "failure" {
		t.Fatalf("third call = %+v", c)
	}
}

func TestRecordCount_IgnoresNonPositive(t *testing.T) {
	r := install(t)

	RecordCount("j", "words", 0)
	RecordCount("j", "words", -3)
	RecordCount("j", "words", 12)
	RecordSinkBatches("j", 0)
	RecordSinkBatches("j", 2)

	if len(r.calls) != 2 {
		t.Fatalf("calls = %+v, want 2", r.calls)
	}
	if c := r.calls[0]; c.name != RecordsTotal || c.value != 12 || c.labels["kind"] != "words" {
		t.Fatalf("record call = %+v", c)
	}
	if c := r.calls[1]; c.name != SinkBatchTotal || c.value != 2 {
		t.Fatalf("batch call = %+v", c)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	r := install(t)
	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if r.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", r.flushes)
	}
}
