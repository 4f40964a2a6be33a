package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

func handle(name string) Handle {
	return Handle{Name: name, R: io.NopCloser(strings.NewReader(name))}
}

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	for _, c := range []int{0, -1} {
		if _, err := New(c); err == nil {
			t.Fatalf("New(%d) error = nil, want non-nil", c)
		}
	}
}

// TestQueue_FIFO verifies a single consumer sees handles in submission order,
// followed by the End sentinel.
func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	names := []string{"a.c", "b.c", "c.h", "d.h", "e.c"}
	go func() {
		for _, n := range names {
			if err := q.Reserve(ctx); err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			q.Submit(handle(n))
		}
		if err := q.SubmitEnd(ctx, 1); err != nil {
			t.Errorf("SubmitEnd: %v", err)
		}
	}()

	var got []string
	for {
		s, err := q.Claim(ctx)
		if err != nil {
			t.Fatalf("Claim: %v", err)
		}
		q.Release()
		if s.Kind == End {
			break
		}
		if s.Kind != Live {
			t.Fatalf("slot kind = %v, want live", s.Kind)
		}
		got = append(got, s.Handle.Name)
		_ = s.Handle.Close()
	}
	if strings.Join(got, ",") != strings.Join(names, ",") {
		t.Fatalf("claim order = %v, want %v", got, names)
	}
}

// TestQueue_ReserveBlocksWhenFull checks the producer is throttled at capacity
// until a consumer returns a unit.
func TestQueue_ReserveBlocksWhenFull(t *testing.T) {
	t.Parallel()

	q, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := q.Reserve(ctx); err != nil {
			t.Fatalf("Reserve #%d: %v", i, err)
		}
		q.Submit(handle(fmt.Sprint(i)))
	}

	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := q.Reserve(tctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Reserve on full queue error = %v, want deadline exceeded", err)
	}

	if _, err := q.Claim(ctx); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	q.Release()
	if err := q.Reserve(ctx); err != nil {
		t.Fatalf("Reserve after release: %v", err)
	}
}

func TestQueue_SubmitSkip(t *testing.T) {
	t.Parallel()

	q, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := q.Reserve(ctx); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	q.SubmitSkip()
	if err := q.SubmitEnd(ctx, 1); err != nil {
		t.Fatalf("SubmitEnd: %v", err)
	}

	for _, want := range []Kind{Skip, End} {
		s, err := q.Claim(ctx)
		if err != nil {
			t.Fatalf("Claim: %v", err)
		}
		if s.Kind != want {
			t.Fatalf("Claim kind = %v, want %v", s.Kind, want)
		}
		q.Release()
	}
	// Both units are back: the queue can be filled to capacity again.
	for i := 0; i < q.Cap(); i++ {
		if err := q.Reserve(ctx); err != nil {
			t.Fatalf("Reserve #%d after drain: %v", i, err)
		}
	}
}

// TestQueue_ReleaseWithoutSubmit mirrors a failed open: the reserved unit is
// returned and the queue keeps flowing.
func TestQueue_ReleaseWithoutSubmit(t *testing.T) {
	t.Parallel()

	q, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 10; i++ {
		if err := q.Reserve(ctx); err != nil {
			t.Fatalf("Reserve #%d: %v", i, err)
		}
		q.Release()
	}
	if err := q.SubmitEnd(ctx, 1); err != nil {
		t.Fatalf("SubmitEnd: %v", err)
	}
	s, err := q.Claim(ctx)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if s.Kind != End {
		t.Fatalf("slot kind = %v, want end", s.Kind)
	}
}

func TestQueue_ClaimBlocksWhenEmpty(t *testing.T) {
	t.Parallel()

	q, err := New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := q.Claim(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Claim on empty queue error = %v, want deadline exceeded", err)
	}
}

// TestQueue_ManyConsumers checks every handle is claimed exactly once and every
// consumer receives exactly one End.
func TestQueue_ManyConsumers(t *testing.T) {
	t.Parallel()

	const (
		consumers = 4
		items     = 200
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q, err := New(consumers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	go func() {
		for i := 0; i < items; i++ {
			if err := q.Reserve(ctx); err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			q.Submit(handle(fmt.Sprint(i)))
		}
		if err := q.SubmitEnd(ctx, consumers); err != nil {
			t.Errorf("SubmitEnd: %v", err)
		}
	}()

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		ends int
		wg   sync.WaitGroup
	)
	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				s, err := q.Claim(ctx)
				if err != nil {
					t.Errorf("Claim: %v", err)
					return
				}
				q.Release()
				mu.Lock()
				if s.Kind == End {
					ends++
					mu.Unlock()
					return
				}
				seen[s.Handle.Name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ends != consumers {
		t.Fatalf("ends = %d, want %d", ends, consumers)
	}
	if len(seen) != items {
		t.Fatalf("distinct handles = %d, want %d", len(seen), items)
	}
	for name, n := range seen {
		if n != 1 {
			t.Fatalf("handle %s claimed %d times", name, n)
		}
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	if Skip.String() != "skip" || Live.String() != "live" || End.String() != "end" {
		t.Fatalf("unexpected kind names: %s %s %s", Skip, Live, End)
	}
	var zero Slot
	if zero.Kind != Skip {
		t.Fatalf("zero slot kind = %v, want skip", zero.Kind)
	}
}
