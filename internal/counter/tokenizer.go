package counter

import "fastwc/internal/token"

// Tokenizer splits a stream of blocks into words and records them in a Table.
//
// A word that reaches the end of a block is held in a fixed pending buffer and
// completed by the next block (or by Finish), so a word split across any
// number of consecutive blocks is recorded once. Words longer than
// token.MaxWordLen are rejected and reported through OnReject.
type Tokenizer struct {
	table Table

	pending [token.MaxWordLen]byte
	plen    int

	// discard is set while skipping the rest of an oversized word that runs
	// past a block boundary; dlen tracks its length so far.
	discard bool
	dlen    int

	words    int64
	rejected int64

	// OnReject, when set, is called with the length of each rejected word.
	OnReject func(length int)
}

// NewTokenizer returns a Tokenizer that records into t.
func NewTokenizer(t Table) *Tokenizer { return &Tokenizer{table: t} }

// Table returns the table words are recorded into.
func (z *Tokenizer) Table() Table { return z.table }

// Words returns the number of words recorded so far.
func (z *Tokenizer) Words() int64 { return z.words }

// Rejected returns the number of oversized words rejected so far.
func (z *Tokenizer) Rejected() int64 { return z.rejected }

// Pending reports whether a word fragment is waiting for the next block.
func (z *Tokenizer) Pending() bool { return z.plen > 0 || z.discard }

// Feed scans one block. The block may be reused by the caller as soon as Feed
// returns.
func (z *Tokenizer) Feed(block []byte) {
	n := len(block)
	i := 0

	if z.Pending() {
		j := 0
		for j < n && token.IsWordByte(block[j]) {
			j++
		}
		z.extend(block[:j])
		if j == n {
			// The whole block continues the pending word.
			return
		}
		z.flush()
		i = j + 1 // block[j] is a delimiter
	}

	for i < n {
		if !token.IsWordByte(block[i]) {
			i++
			continue
		}
		start := i
		for i < n && token.IsWordByte(block[i]) {
			i++
		}
		if i == n {
			z.extend(block[start:])
			return
		}
		z.record(block[start:i])
		i++ // block[i] is a delimiter
	}
}

// Finish ends the current stream. A pending fragment is recorded as the final
// word, since many files end without a trailing delimiter.
func (z *Tokenizer) Finish() { z.flush() }

func (z *Tokenizer) extend(frag []byte) {
	if z.discard {
		z.dlen += len(frag)
		return
	}
	if z.plen+len(frag) > token.MaxWordLen {
		z.discard = true
		z.dlen = z.plen + len(frag)
		z.plen = 0
		return
	}
	z.plen += copy(z.pending[z.plen:], frag)
}

func (z *Tokenizer) flush() {
	switch {
	case z.discard:
		z.reject(z.dlen)
		z.discard = false
		z.dlen = 0
	case z.plen > 0:
		z.record(z.pending[:z.plen])
		z.plen = 0
	}
}

func (z *Tokenizer) record(w []byte) {
	if len(w) > token.MaxWordLen {
		z.reject(len(w))
		return
	}
	z.table[string(w)]++
	z.words++
}

func (z *Tokenizer) reject(length int) {
	z.rejected++
	if z.OnReject != nil {
		z.OnReject(length)
	}
}
