// Package counter tokenizes file contents into words and counts them.
//
// Each worker owns one Tokenizer and one Table for its whole lifetime, so the
// hot path never takes a lock. Tables are only shared during reduction, after
// the owning worker has stopped writing.
package counter

// Table maps a word to its number of occurrences.
type Table map[string]uint64

// NewTable returns an empty table with room for about n words.
func NewTable(n int) Table { return make(Table, n) }

// Merge adds every count of src into t. src is not modified.
func (t Table) Merge(src Table) {
	for w, n := range src {
		t[w] += n
	}
}

// Total returns the sum of all counts.
func (t Table) Total() uint64 {
	var sum uint64
	for _, n := range t {
		sum += n
	}
	return sum
}

// Equal reports whether t and o hold the same words with the same counts.
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for w, n := range t {
		if m, ok := o[w]; !ok || m != n {
			return false
		}
	}
	return true
}
