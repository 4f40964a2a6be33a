// Package queue implements the bounded handle queue that connects the file
// producer to the counting workers.
//
// The queue is a fixed-capacity ring of slots coordinated by two counting
// semaphores:
//
//	free   starts at capacity; the producer acquires one unit per slot it
//	       fills and a consumer returns it once it is done with a claimed slot.
//	ready  starts at zero; the producer releases one unit per filled slot and
//	       a consumer acquires one unit per claim.
//
// A single mutex guards the read and write cursors. Capacity is deliberately
// small (one slot per worker) so the producer never holds many more open
// files than the workers can process at once.
package queue

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Kind tags the content of a slot.
type Kind uint8

const (
	// Skip marks a vacated or retired slot. It is the zero value, so a slot
	// that was already claimed reads back as Skip.
	Skip Kind = iota
	// Live carries an open handle.
	Live
	// End tells exactly one consumer that no more work will arrive.
	End
)

func (k Kind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Live:
		return "live"
	case End:
		return "end"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Handle is an owned, open, readable resource. Ownership moves with the value:
// whoever claims it from the queue must Close it exactly once.
type Handle struct {
	Name string
	R    io.ReadCloser
}

// Read implements io.Reader.
func (h Handle) Read(p []byte) (int, error) { return h.R.Read(p) }

// Close closes the underlying resource.
func (h Handle) Close() error {
	if h.R == nil {
		return nil
	}
	return h.R.Close()
}

// Slot is one entry of the ring.
type Slot struct {
	Kind   Kind
	Handle Handle
}

// Queue is a bounded multi-consumer handle queue. The zero value is not
// usable; construct with New.
type Queue struct {
	slots []Slot
	free  *semaphore.Weighted
	ready *semaphore.Weighted

	mu    sync.Mutex // guards slots, next, write
	next  int        // read cursor shared by all consumers
	write int        // write cursor
}

// New returns a queue with the given capacity. Capacity must be positive.
func New(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("queue: capacity must be > 0, got %d", capacity)
	}
	ready := semaphore.NewWeighted(int64(capacity))
	// ready starts empty: hold every unit until the producer releases them.
	if !ready.TryAcquire(int64(capacity)) {
		return nil, fmt.Errorf("queue: initialize ready semaphore")
	}
	return &Queue{
		slots: make([]Slot, capacity),
		free:  semaphore.NewWeighted(int64(capacity)),
		ready: ready,
	}, nil
}

// Cap returns the number of slots.
func (q *Queue) Cap() int { return len(q.slots) }

// Reserve blocks until a free slot unit is available or ctx is done.
func (q *Queue) Reserve(ctx context.Context) error {
	if err := q.free.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("queue: reserve: %w", err)
	}
	return nil
}

// Release returns one free slot unit. Producers call it when a reserved slot
// ends up unused (the file could not be opened); consumers call it after they
// are done with a claimed slot, whatever its kind.
func (q *Queue) Release() { q.free.Release(1) }

// Submit stores a live handle and makes it available to one consumer. The
// caller must hold a reservation obtained from Reserve.
func (q *Queue) Submit(h Handle) { q.put(Slot{Kind: Live, Handle: h}) }

// SubmitSkip stores a Skip placeholder in a reserved slot. The consumer that
// claims it returns the reservation and claims again, so the slot is freed
// by the consumer side rather than by the caller.
func (q *Queue) SubmitSkip() { q.put(Slot{Kind: Skip}) }

// SubmitEnd reserves n slots and stores an End sentinel in each, so that n
// consumers each observe exactly one termination signal.
func (q *Queue) SubmitEnd(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := q.Reserve(ctx); err != nil {
			return err
		}
		q.put(Slot{Kind: End})
	}
	return nil
}

func (q *Queue) put(s Slot) {
	q.mu.Lock()
	q.slots[q.write%len(q.slots)] = s
	q.write++
	q.mu.Unlock()
	q.ready.Release(1)
}

// Claim blocks until a slot is available, then takes it at the shared read
// cursor and vacates it. Slots are claimed in submission order.
func (q *Queue) Claim(ctx context.Context) (Slot, error) {
	if err := q.ready.Acquire(ctx, 1); err != nil {
		return Slot{}, fmt.Errorf("queue: claim: %w", err)
	}
	q.mu.Lock()
	i := q.next % len(q.slots)
	s := q.slots[i]
	q.slots[i] = Slot{}
	q.next++
	q.mu.Unlock()
	return s, nil
}
