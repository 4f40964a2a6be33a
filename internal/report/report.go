// Package report turns an aggregate word-count table into the ordered,
// printable report.
//
// Order: count descending, then word ascending (byte-wise). Words are unique
// keys, so the order is total.
package report

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/zeebo/xxh3"

	"fastwc/internal/counter"
)

// Entry is one line of the report.
type Entry struct {
	Word  string
	Count uint64
}

// Compare orders a before b when it has the higher count, or the same count
// and the lexicographically smaller word.
func Compare(a, b Entry) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.Word, b.Word)
}

// Less reports whether a sorts before b.
func Less(a, b Entry) bool { return Compare(a, b) < 0 }

// Sort returns every entry of t in report order.
func Sort(t counter.Table) []Entry {
	out := make([]Entry, 0, len(t))
	for w, n := range t {
		out = append(out, Entry{Word: w, Count: n})
	}
	slices.SortFunc(out, Compare)
	return out
}

// Top returns the first n entries; n <= 0 keeps all of them.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// appendLine formats one report line: the word right-aligned in a 32-byte
// field (longer words overflow it), a separator, and the count in 8.
func appendLine(dst []byte, e Entry) []byte {
	for pad := 32 - len(e.Word); pad > 0; pad-- {
		dst = append(dst, ' ')
	}
	dst = append(dst, e.Word...)
	dst = append(dst, "   | "...)
	num := strconv.AppendUint(nil, e.Count, 10)
	for pad := 8 - len(num); pad > 0; pad-- {
		dst = append(dst, ' ')
	}
	dst = append(dst, num...)
	return append(dst, '\n')
}

// Write prints entries, one line each, to w.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	line := make([]byte, 0, 64)
	for _, e := range entries {
		line = appendLine(line[:0], e)
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("report: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

// Digest returns the xxh3 hash of the formatted report. Two runs over the same
// input produce the same digest regardless of thread count, block size, or
// merge strategy.
func Digest(entries []Entry) uint64 {
	h := xxh3.New()
	line := make([]byte, 0, 64)
	for _, e := range entries {
		line = appendLine(line[:0], e)
		_, _ = h.Write(line)
	}
	return h.Sum64()
}
