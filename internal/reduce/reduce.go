// Package reduce combines per-worker word-count tables into one aggregate.
//
// Two strategies produce identical results:
//
//   - Sequential: the caller folds every table into a new one after all
//     workers have returned.
//   - Tree: workers merge among themselves as a binary reduction tree right
//     after they receive End, leaving the aggregate in worker 0's table.
package reduce

import (
	"context"
	"fmt"

	"fastwc/internal/counter"
)

// Sequential folds all tables into a new table. Nil tables are ignored and
// the inputs are not modified.
func Sequential(tables []counter.Table) counter.Table {
	size := 0
	for _, t := range tables {
		size = max(size, len(t))
	}
	out := counter.NewTable(size)
	for _, t := range tables {
		out.Merge(t)
	}
	return out
}

// Role is what a worker does at one round of the tree merge.
type Role int

const (
	// Receive: wait for the partner at id+step and fold its table.
	Receive Role = iota
	// Send: signal completion and leave; a lower worker takes the table.
	Send
	// Idle: the partner id+step does not exist; move on to the next round.
	Idle
)

func (r Role) String() string {
	switch r {
	case Receive:
		return "receive"
	case Send:
		return "send"
	case Idle:
		return "idle"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// RoleAt returns the role of worker id among n workers at the round whose
// step is a power of two. Written in binary, bit step of id decides: a set
// bit means the worker sends to id-step, a clear bit means it receives from
// id+step when that worker exists.
func RoleAt(id, n, step int) Role {
	if id&step != 0 {
		return Send
	}
	if id+step >= n {
		return Idle
	}
	return Receive
}

// Rounds returns the number of rounds needed to reduce n tables, i.e. the
// number of doublings of step until step >= n.
func Rounds(n int) int {
	r := 0
	for step := 1; step < n; step <<= 1 {
		r++
	}
	return r
}

// Tree coordinates a binary-tree merge between n workers. Each worker owns one
// rendezvous, closed once its table is final.
type Tree struct {
	done []chan struct{}
}

// NewTree allocates rendezvous signals for n workers.
func NewTree(n int) *Tree {
	t := &Tree{done: make([]chan struct{}, n)}
	for i := range t.done {
		t.done[i] = make(chan struct{})
	}
	return t
}

// Size returns the number of participants.
func (t *Tree) Size() int { return len(t.done) }

// Merge is called by worker id once its own table is stored in tables[id].
// The worker walks the rounds: while it is a receiver it waits for its
// partner and folds the partner's table into its own; once it is a sender (or
// has nothing left to receive) it signals and returns. After every worker has
// returned, tables[0] holds the aggregate.
//
// tables must have length Size() and each index must only be written by its
// worker before that worker calls Merge.
func (t *Tree) Merge(ctx context.Context, id int, tables []counter.Table) error {
	n := len(t.done)
	if len(tables) != n {
		return fmt.Errorf("reduce: %d tables for %d workers", len(tables), n)
	}
	if id < 0 || id >= n {
		return fmt.Errorf("reduce: worker id %d out of range [0,%d)", id, n)
	}
	defer close(t.done[id])

	for step := 1; step < n; step <<= 1 {
		switch RoleAt(id, n, step) {
		case Send:
			return nil
		case Idle:
			continue
		}
		partner := id + step
		select {
		case <-t.done[partner]:
		case <-ctx.Done():
			return fmt.Errorf("reduce: worker %d waiting for %d: %w", id, partner, ctx.Err())
		}
		if tables[id] == nil {
			tables[id] = counter.NewTable(len(tables[partner]))
		}
		tables[id].Merge(tables[partner])
	}
	return nil
}

// Wait blocks until worker 0 has finished merging, i.e. the aggregate is
// complete.
func (t *Tree) Wait(ctx context.Context) error {
	if len(t.done) == 0 {
		return nil
	}
	select {
	case <-t.done[0]:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
