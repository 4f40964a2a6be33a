package counter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"fastwc/internal/queue"
)

// Stats holds cross-goroutine counters shared by all workers. All fields are
// updated atomically.
type Stats struct {
	Files       atomic.Int64 // live handles claimed
	Blocks      atomic.Int64 // non-empty reads
	Bytes       atomic.Int64 // bytes scanned
	Words       atomic.Int64 // words recorded
	Oversized   atomic.Int64 // words rejected for length
	ReadErrors  atomic.Int64 // files whose read stopped on an error
	CloseErrors atomic.Int64 // files that failed to close
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Files       int64
	Blocks      int64
	Bytes       int64
	Words       int64
	Oversized   int64
	ReadErrors  int64
	CloseErrors int64
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Files:       s.Files.Load(),
		Blocks:      s.Blocks.Load(),
		Bytes:       s.Bytes.Load(),
		Words:       s.Words.Load(),
		Oversized:   s.Oversized.Load(),
		ReadErrors:  s.ReadErrors.Load(),
		CloseErrors: s.CloseErrors.Load(),
	}
}

// Worker claims handles from the queue and counts the words in each one into
// its private table until it receives End.
type Worker struct {
	ID        int
	Queue     *queue.Queue
	BlockSize int
	Stats     *Stats
	Logger    *log.Logger // nil means log.Default()
}

// Run loops Claim → stream until End and returns the worker's table. Per-file
// I/O errors are logged and never stop the loop; Run only fails when ctx is
// done while waiting on the queue.
func (w *Worker) Run(ctx context.Context) (Table, error) {
	if w.BlockSize <= 0 {
		return nil, fmt.Errorf("worker %d: block size must be > 0", w.ID)
	}
	lg := w.Logger
	if lg == nil {
		lg = log.Default()
	}
	stats := w.Stats
	if stats == nil {
		stats = &Stats{}
	}

	table := NewTable(1024)
	tok := NewTokenizer(table)
	buf := make([]byte, w.BlockSize)

	for {
		slot, err := w.Queue.Claim(ctx)
		if err != nil {
			return table, fmt.Errorf("worker %d: %w", w.ID, err)
		}
		switch slot.Kind {
		case queue.Skip:
			w.Queue.Release()
		case queue.End:
			w.Queue.Release()
			return table, nil
		case queue.Live:
			stats.Files.Add(1)
			w.stream(slot.Handle, buf, tok, stats, lg)
			if err := slot.Handle.Close(); err != nil {
				stats.CloseErrors.Add(1)
				lg.Printf("worker %d: unable to close file %s: %v", w.ID, slot.Handle.Name, err)
			}
			w.Queue.Release()
		}
	}
}

// stream reads h block by block into buf and feeds the tokenizer. The pending
// fragment is always flushed at the end, so a read error keeps the words seen
// so far.
func (w *Worker) stream(h queue.Handle, buf []byte, tok *Tokenizer, stats *Stats, lg *log.Logger) {
	words, rejected := tok.Words(), tok.Rejected()
	tok.OnReject = func(length int) {
		lg.Printf("worker %d: word is unreasonably long file=%s len=%d", w.ID, h.Name, length)
	}

	for {
		n, err := h.Read(buf)
		if n > 0 {
			stats.Blocks.Add(1)
			stats.Bytes.Add(int64(n))
			tok.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.ReadErrors.Add(1)
			lg.Printf("worker %d: read %s: %v", w.ID, h.Name, err)
			break
		}
	}
	tok.Finish()
	tok.OnReject = nil

	stats.Words.Add(tok.Words() - words)
	stats.Oversized.Add(tok.Rejected() - rejected)
}
